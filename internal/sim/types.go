package sim

import (
	"fmt"
	"math"
	"strconv"

	"github.com/go-gl/mathgl/mgl64"
)

// Engine is one assembled experiment, stepped by the simulator.
type Engine interface {
	// Step advances inputs and the core by dt and delivers queued effects.
	Step(dt float64)
	Sample(t float64) LogEntry
	// Done reports that the scripted input has nothing left to do.
	Done() bool
}

type Metric interface {
	Name() string
	Observe(e LogEntry)
	Value() float64
	Reset()
}

type Observer interface {
	OnStep(e LogEntry)
}

type Config struct {
	Dt          float64
	Duration    float64
	LogInterval float64
	// StopWhenDone ends the run as soon as the engine reports Done.
	StopWhenDone bool
}

type Result struct {
	Rows       []LogEntry
	Metrics    map[string]float64
	StepsTaken int
	Elapsed    float64
	Complete   bool
}

// LogEntry is one telemetry row: tracked and displayed positions plus task
// counters.
type LogEntry struct {
	Time      float64
	Condition string
	Primary   string
	State     string

	PrimaryTracked   mgl64.Vec3
	SecondaryTracked mgl64.Vec3
	PrimaryVisible   mgl64.Vec3
	SecondaryVisible mgl64.Vec3
	Head             mgl64.Vec3
	EndEffector      mgl64.Vec3
	Target           mgl64.Vec3

	Loaded         bool
	TargetsReached int
	TaskIndex      int
	GrabCount      int
	Collisions     int
	Delivered      float64
	PileRemaining  float64
	Complete       bool
}

var vecColumns = []string{"pt", "st", "pv", "sv", "hmd", "ee", "target"}

func (e *LogEntry) vectors() []*mgl64.Vec3 {
	return []*mgl64.Vec3{
		&e.PrimaryTracked, &e.SecondaryTracked, &e.PrimaryVisible, &e.SecondaryVisible,
		&e.Head, &e.EndEffector, &e.Target,
	}
}

// Header lists the CSV columns written by Record.
func Header() []string {
	h := []string{"time", "condition", "primary", "state"}
	for _, c := range vecColumns {
		h = append(h, c+".x", c+".y", c+".z")
	}
	return append(h,
		"loaded", "targets_reached", "task_index", "grab_count",
		"collision_count", "delivered", "pile_remaining", "complete")
}

func (e LogEntry) Record() []string {
	f := func(v float64) string { return strconv.FormatFloat(v, 'f', 6, 64) }
	rec := []string{f(e.Time), e.Condition, e.Primary, e.State}
	for _, v := range e.vectors() {
		rec = append(rec, f(v[0]), f(v[1]), f(v[2]))
	}
	return append(rec,
		strconv.FormatBool(e.Loaded),
		strconv.Itoa(e.TargetsReached),
		strconv.Itoa(e.TaskIndex),
		strconv.Itoa(e.GrabCount),
		strconv.Itoa(e.Collisions),
		f(e.Delivered),
		f(e.PileRemaining),
		strconv.FormatBool(e.Complete))
}

// ParseRecord reverses Record.
func ParseRecord(rec []string) (LogEntry, error) {
	var e LogEntry
	if len(rec) != len(Header()) {
		return e, fmt.Errorf("sim: expected %d columns, got %d", len(Header()), len(rec))
	}
	var err error
	num := func(s string) float64 {
		v, perr := strconv.ParseFloat(s, 64)
		if perr != nil && err == nil {
			err = perr
		}
		return v
	}
	integer := func(s string) int {
		v, perr := strconv.Atoi(s)
		if perr != nil && err == nil {
			err = perr
		}
		return v
	}
	boolean := func(s string) bool {
		v, perr := strconv.ParseBool(s)
		if perr != nil && err == nil {
			err = perr
		}
		return v
	}

	e.Time = num(rec[0])
	e.Condition, e.Primary, e.State = rec[1], rec[2], rec[3]
	i := 4
	for _, v := range e.vectors() {
		*v = mgl64.Vec3{num(rec[i]), num(rec[i+1]), num(rec[i+2])}
		i += 3
	}
	e.Loaded = boolean(rec[i])
	e.TargetsReached = integer(rec[i+1])
	e.TaskIndex = integer(rec[i+2])
	e.GrabCount = integer(rec[i+3])
	e.Collisions = integer(rec[i+4])
	e.Delivered = num(rec[i+5])
	e.PileRemaining = num(rec[i+6])
	e.Complete = boolean(rec[i+7])
	return e, err
}

// Column returns a numeric column by its header name.
func (e LogEntry) Column(name string) (float64, bool) {
	for i, c := range vecColumns {
		v := *e.vectors()[i]
		switch name {
		case c + ".x":
			return v[0], true
		case c + ".y":
			return v[1], true
		case c + ".z":
			return v[2], true
		}
	}
	b := func(v bool) float64 {
		if v {
			return 1
		}
		return 0
	}
	switch name {
	case "time":
		return e.Time, true
	case "lag":
		return e.Lag(), true
	case "loaded":
		return b(e.Loaded), true
	case "targets_reached":
		return float64(e.TargetsReached), true
	case "task_index":
		return float64(e.TaskIndex), true
	case "grab_count":
		return float64(e.GrabCount), true
	case "collision_count":
		return float64(e.Collisions), true
	case "delivered":
		return e.Delivered, true
	case "pile_remaining":
		return e.PileRemaining, true
	case "complete":
		return b(e.Complete), true
	}
	return 0, false
}

// Lag is the distance between where the primary anchor really is and where
// it is drawn.
func (e LogEntry) Lag() float64 {
	return e.PrimaryTracked.Sub(e.PrimaryVisible).Len()
}

func (e LogEntry) IsValid() bool {
	for _, v := range e.vectors() {
		for _, c := range v {
			if math.IsNaN(c) || math.IsInf(c, 0) {
				return false
			}
		}
	}
	return true
}
