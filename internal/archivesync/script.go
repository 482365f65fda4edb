// Package archivesync plays the scripted NAS archive sync and tracks its runs.
package archivesync

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/troop78/troophub/internal/models"
)

// Phases of the default script, in order.
const (
	PhaseConnect      = "Connecting to NAS"
	PhaseAuthenticate = "Authenticating"
	PhaseScan         = "Scanning directories"
	PhaseIndex        = "Indexing files"
	PhaseFaces        = "Running AI face recognition"
	PhaseMetadata     = "Extracting metadata"
	PhaseComplete     = "Complete"
)

// Indexing shape of the default script.
const (
	VariantsPerFile = 150
	variantsPerStep = 10
	logEvery        = 30
	indexStart      = 25.0
	indexEnd        = 85.0
)

// DefaultFiles are the sample paths the default script pretends to index.
var DefaultFiles = []string{
	"/vol/photos/2024/summer_camp/archery_practice_001.jpg",
	"/vol/photos/2024/winter_camp/snow_shelter_build.jpg",
	"/vol/photos/2023/eagle_ceremony/danny_wilson_ceremony.jpg",
	"/vol/photos/2023/gettysburg/battlefield_tour_group.jpg",
	"/vol/photos/2022/kandersteg_prep/gear_check_meeting.jpg",
	"/vol/photos/2024/merit_badge_weekend/cooking_demo.jpg",
	"/vol/photos/2024/campfire/songs_and_stories.jpg",
	"/vol/photos/2023/hiking/appalachian_trail_section.jpg",
	"/vol/photos/2024/service_project/trail_maintenance.jpg",
	"/vol/photos/2022/court_of_honor/rank_advancement.jpg",
	"/vol/photos/2024/patrol_meetings/leadership_training.jpg",
	"/vol/photos/2023/fundraiser/car_wash_weekend.jpg",
	"/vol/photos/2024/camping/tent_setup_competition.jpg",
	"/vol/photos/2023/orienteering/compass_navigation.jpg",
	"/vol/photos/2024/first_aid/emergency_response_drill.jpg",
}

// Line is a log line of a step, without its timestamp.
type Line struct {
	Message string
	Type    models.LogType
}

// Step waits Delay, then prints Lines and moves the progress bar to Progress with Files processed.
type Step struct {
	Delay    time.Duration
	Phase    string
	Lines    []Line
	Progress float64
	Files    int
}

// Script is the fixed ordered list of steps played by a Sequencer.
type Script []Step

// Total returns the unscaled playback time of s.
func (s Script) Total() time.Duration {
	var d time.Duration
	for _, st := range s {
		d += st.Delay
	}
	return d
}

func info(msg string) Line    { return Line{Message: msg, Type: models.LogInfo} }
func success(msg string) Line { return Line{Message: msg, Type: models.LogSuccess} }

// DefaultScript builds the seven phase sync over files, each indexed in VariantsPerFile variants.
func DefaultScript(files []string) Script {
	s := Script{
		{Phase: PhaseConnect, Lines: []Line{info("> Initializing Synology NAS connection...")}},
		{Delay: 500 * time.Millisecond, Phase: PhaseConnect, Lines: []Line{success("> Connected to DS920+ (192.168.1.78)")}, Progress: 5},
		{Delay: 300 * time.Millisecond, Phase: PhaseAuthenticate, Lines: []Line{info("> Authenticating with admin credentials...")}, Progress: 5},
		{Delay: 400 * time.Millisecond, Phase: PhaseAuthenticate, Lines: []Line{success("> Authentication successful")}, Progress: 10},
		{Delay: 200 * time.Millisecond, Phase: PhaseScan, Lines: []Line{info("> Scanning /vol/photos directory...")}, Progress: 15},
		{Delay: 500 * time.Millisecond, Phase: PhaseScan, Lines: []Line{
			info("> Found 42,247 files across 847 directories"),
			info("> Detected 14TB of photo data"),
		}, Progress: indexStart},
	}

	total := len(files) * VariantsPerFile
	for i, file := range files {
		for j := 0; j < VariantsPerFile; j += variantsPerStep {
			st := Step{Delay: 50 * time.Millisecond, Phase: PhaseIndex}
			for k := j; k < j+variantsPerStep; k++ {
				if k%logEvery == 0 {
					st.Lines = append(st.Lines, success(fmt.Sprintf("> Indexing %s... [OK]", variant(file, k+1))))
				}
			}
			st.Files = i*VariantsPerFile + j + variantsPerStep
			st.Progress = indexStart + float64(st.Files)/float64(total)*(indexEnd-indexStart)
			if st.Progress > indexEnd {
				st.Progress = indexEnd
			}
			s = append(s, st)
		}
	}

	s = append(s,
		Step{Delay: 300 * time.Millisecond, Phase: PhaseFaces, Lines: []Line{info("> Initializing facial recognition engine...")}, Progress: indexEnd},
		Step{Delay: 400 * time.Millisecond, Phase: PhaseFaces, Lines: []Line{
			success("> Detected 127 unique scout faces"),
			info("> Confidence threshold: 88%"),
		}, Progress: 90},
		Step{Delay: 400 * time.Millisecond, Phase: PhaseMetadata, Lines: []Line{info("> Extracting EXIF data from 42,247 images...")}, Progress: 90},
		Step{Delay: 600 * time.Millisecond, Phase: PhaseMetadata, Lines: []Line{
			success("> GPS coordinates extracted: 1,247 locations"),
			success("> Event tags generated: 45 categories"),
		}, Progress: 95},
		Step{Delay: 300 * time.Millisecond, Phase: PhaseMetadata, Lines: []Line{info("> Building search index...")}, Progress: 95},
		Step{Delay: 500 * time.Millisecond, Phase: PhaseComplete, Lines: []Line{
			success("> Sync completed successfully!"),
			info("> Total files processed: " + thousands(total)),
			success("> Archive status: ONLINE"),
		}, Progress: 100, Files: total},
	)
	return s
}

// variant names the n-th copy of file, e.g. trail.jpg -> trail_031.jpg.
func variant(file string, n int) string {
	suffix := fmt.Sprintf("_%03d", n)
	if i := strings.LastIndex(file, "."); i > strings.LastIndex(file, "/") {
		return file[:i] + suffix + file[i:]
	}
	return file + suffix
}

func thousands(n int) string {
	s := strconv.Itoa(n)
	for i := len(s) - 3; i > 0; i -= 3 {
		s = s[:i] + "," + s[i:]
	}
	return s
}
