package models

// FaceDetection is a scripted face match on a photo.
type FaceDetection struct {
	MemberID   string  `json:"member_id,omitempty" yaml:"member_id"`
	Confidence float64 `json:"confidence" yaml:"confidence"`
	Verified   bool    `json:"verified" yaml:"verified"`
}

// Photo is an archived troop photo with its suggested and verified tags.
type Photo struct {
	ID              string          `json:"id" yaml:"id" validate:"required"`
	URL             string          `json:"url" yaml:"url"`
	ThumbnailURL    string          `json:"thumbnail_url" yaml:"thumbnail_url"`
	Date            string          `json:"date" yaml:"date"`
	Event           string          `json:"event" yaml:"event"`
	AITags          []string        `json:"ai_tags" yaml:"ai_tags"`
	VerifiedTags    []string        `json:"verified_tags" yaml:"verified_tags"`
	FaceDetections  []FaceDetection `json:"face_detections" yaml:"face_detections"`
	ConfidenceScore float64         `json:"confidence_score" yaml:"confidence_score"`
	Location        string          `json:"location,omitempty" yaml:"location"`
}

// HasTag reports whether tag is among the AI or verified tags.
func (p *Photo) HasTag(tag string) bool {
	for _, t := range p.AITags {
		if t == tag {
			return true
		}
	}
	for _, t := range p.VerifiedTags {
		if t == tag {
			return true
		}
	}
	return false
}

// ToggleVerifiedTag adds tag to the verified tags, or removes it if already verified.
// It returns whether the tag is verified afterwards.
func (p *Photo) ToggleVerifiedTag(tag string) bool {
	for i, t := range p.VerifiedTags {
		if t == tag {
			p.VerifiedTags = append(p.VerifiedTags[:i:i], p.VerifiedTags[i+1:]...)
			return false
		}
	}
	p.VerifiedTags = append(p.VerifiedTags, tag)
	return true
}

// Clone returns a copy of p that shares no slices with it.
func (p *Photo) Clone() Photo {
	out := *p
	out.AITags = append([]string(nil), p.AITags...)
	out.VerifiedTags = append([]string(nil), p.VerifiedTags...)
	out.FaceDetections = append([]FaceDetection(nil), p.FaceDetections...)
	return out
}

// HasVerifiedTag reports whether tag has been verified.
func (p *Photo) HasVerifiedTag(tag string) bool {
	for _, t := range p.VerifiedTags {
		if t == tag {
			return true
		}
	}
	return false
}
