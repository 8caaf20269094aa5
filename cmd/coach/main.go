// Coach - synthetic rehab coaching session demo
//
// Runs the full pipeline against a generated squat motion: landmark
// processing in an isolated worker, balance analysis, and a looping
// exercise timeline publishing coach prompts on the event bus.
package main

import (
	"context"
	"fmt"
	"math"
	"os"
	"os/signal"
	"syscall"
	"time"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/kinesio/go-kinesio/internal/config"
	"github.com/kinesio/go-kinesio/internal/log"
	"github.com/kinesio/go-kinesio/pkg/biomech"
	"github.com/kinesio/go-kinesio/pkg/events"
	"github.com/kinesio/go-kinesio/pkg/pose"
	"github.com/kinesio/go-kinesio/pkg/timeline"
)

func main() {
	log.InitFromEnv()

	frameRate := config.FrameRate()
	duration := config.SessionDuration()

	fmt.Println("🏋️  Kinesio Coaching Session")
	fmt.Println("===========================")
	fmt.Printf("Frame rate: %.0f fps, session: %v\n\n", frameRate, duration)

	bus := events.NewBus()
	subscribePrompts(bus)

	orch := timeline.NewOrchestrator(bus, timeline.DefaultConfig())
	tl, err := squatTimeline()
	if err != nil {
		log.Error("build timeline", "error", err)
		os.Exit(1)
	}
	orch.Load(tl)

	worker := pose.NewWorker(pose.DefaultConfig(), 8)
	worker.Start()
	defer worker.Stop()
	if err := awaitReady(worker); err != nil {
		log.Error("pose worker", "error", err)
		os.Exit(1)
	}

	engine := biomech.NewEngine(biomech.DefaultEngineConfig())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigChan
		fmt.Println("\n\n👋 Ending session early")
		cancel()
	}()

	orch.Play()
	runSession(ctx, orch, worker, engine, frameRate, duration)
	reps := orch.LoopCount()
	orch.Stop()

	fmt.Printf("\nSession complete: %d reps\n", reps)
}

// subscribePrompts prints the coaching side of the session as the
// timeline publishes it.
func subscribePrompts(bus *events.Bus) {
	bus.On(timeline.EventPhaseChange, func(e events.Event) {
		pc := e.(timeline.PhaseChange)
		fmt.Printf("  ▶ %s\n", pc.Phase)
	})
	bus.On(timeline.EventSpeechStart, func(e events.Event) {
		ss := e.(timeline.SpeechStart)
		fmt.Printf("  🗣  %q\n", ss.Phrase)
	})
	bus.On(timeline.EventCueTrigger, func(e events.Event) {
		ct := e.(timeline.CueTrigger)
		fmt.Printf("  ⚠  cue %s (%s)\n", ct.CueID, ct.CueType)
	})
	bus.On(timeline.EventRepCount, func(e events.Event) {
		rc := e.(timeline.RepCount)
		fmt.Printf("  ✅ rep %d\n", rc.Reps)
	})
}

// squatTimeline authors one looping squat repetition.
func squatTimeline() (*timeline.Timeline, error) {
	tl, err := timeline.New("squat-basic", 4*time.Second, timeline.Options{Loop: true})
	if err != nil {
		return nil, err
	}

	steps := []struct {
		start, end time.Duration
		phase      string
	}{
		{0, 1500 * time.Millisecond, "descend"},
		{1500 * time.Millisecond, 2500 * time.Millisecond, "hold bottom"},
		{2500 * time.Millisecond, 4 * time.Second, "ascend"},
	}
	for _, s := range steps {
		if err := tl.AddPhase(s.start, s.end, s.phase, timeline.PhaseOptions{Easing: timeline.EaseInOut}); err != nil {
			return nil, err
		}
	}

	if err := tl.AddSpeech(100*time.Millisecond, "bend your knees, back straight", 1200*time.Millisecond, timeline.SpeechOptions{}); err != nil {
		return nil, err
	}
	if err := tl.AddSpeech(2600*time.Millisecond, "push up through your heels", time.Second, timeline.SpeechOptions{}); err != nil {
		return nil, err
	}
	if err := tl.AddCue(1500*time.Millisecond, "knee-align", timeline.CueHighlight, "leftKnee", 2500*time.Millisecond); err != nil {
		return nil, err
	}
	return tl, nil
}

// awaitReady blocks until the worker announces READY on its broadcast
// channel.
func awaitReady(w *pose.Worker) error {
	select {
	case resp := <-w.Responses():
		if resp.Type != pose.ResponseReady {
			return fmt.Errorf("unexpected first response %s", resp.Type)
		}
		return nil
	case <-time.After(2 * time.Second):
		return fmt.Errorf("worker did not become ready")
	}
}

// runSession feeds synthetic frames through the pipeline until the
// session duration elapses or the context is cancelled.
func runSession(ctx context.Context, orch *timeline.Orchestrator, worker *pose.Worker, engine *biomech.Engine, frameRate float64, duration time.Duration) {
	dt := 1.0 / frameRate
	ticker := time.NewTicker(time.Duration(float64(time.Second) / frameRate))
	defer ticker.Stop()
	deadline := time.After(duration)

	lastLoops := 0
	var lastReport time.Time

	for {
		select {
		case <-ctx.Done():
			return
		case <-deadline:
			return
		case now := <-ticker.C:
			depth := squatDepth(orch.Position())
			frame := syntheticFrame(depth)

			processed, err := worker.ProcessFrame(ctx, frame, dt)
			if err != nil {
				log.Warn("process frame", "error", err)
				continue
			}
			angles, err := worker.CalculateAngles(ctx, frame)
			if err != nil {
				log.Warn("calculate angles", "error", err)
				continue
			}

			state := engine.Update(segmentsFrom(processed), processed[pose.LandmarkLeftAnkle].Position, processed[pose.LandmarkRightAnkle].Position, dt)

			if loops := orch.LoopCount(); loops > lastLoops {
				lastLoops = loops
				orch.CountRep()
			}

			if now.Sub(lastReport) >= time.Second {
				lastReport = now
				report(angles, state)
			}
		}
	}
}

func report(angles []pose.JointAngleResult, state biomech.BalanceState) {
	var knee float64
	for _, a := range angles {
		if a.Name == "leftKnee" {
			knee = a.Angle
		}
	}
	log.Info("session status",
		"leftKnee", fmt.Sprintf("%.0f°", knee),
		"stability", fmt.Sprintf("%.2f", state.Weight.StabilityIndex),
		"stance", state.Weight.StancePhase,
	)
}

// squatDepth maps the timeline position to a crouch depth in meters.
func squatDepth(pos time.Duration) float64 {
	const maxDepth = 0.30
	t := pos.Seconds()
	switch {
	case t < 1.5:
		return maxDepth * easeInOut(t/1.5)
	case t < 2.5:
		return maxDepth
	default:
		return maxDepth * easeInOut((4.0-t)/1.5)
	}
}

func easeInOut(u float64) float64 {
	if u < 0 {
		u = 0
	}
	if u > 1 {
		u = 1
	}
	return 0.5 - 0.5*math.Cos(u*math.Pi)
}

// syntheticFrame builds a 33-point landmark frame of a person squatting
// to the given depth, in world meters with Y up.
func syntheticFrame(depth float64) []pose.Landmark {
	frame := make([]pose.Landmark, pose.LandmarkCount)
	full := 1.0

	set := func(idx int, x, y, z float64) {
		v := 0.95
		frame[idx] = pose.Landmark{X: x, Y: y, Z: z, Visibility: &v}
	}

	hipY := 0.95*full - depth
	kneeForward := depth * 0.8

	set(pose.LandmarkNose, 0, 1.65*full-depth, 0.05)
	set(pose.LandmarkLeftShoulder, -0.20, 1.45*full-depth, 0)
	set(pose.LandmarkRightShoulder, 0.20, 1.45*full-depth, 0)
	set(pose.LandmarkLeftElbow, -0.25, 1.20*full-depth, 0.10)
	set(pose.LandmarkRightElbow, 0.25, 1.20*full-depth, 0.10)
	set(pose.LandmarkLeftWrist, -0.25, 1.00*full-depth, 0.25)
	set(pose.LandmarkRightWrist, 0.25, 1.00*full-depth, 0.25)
	set(pose.LandmarkLeftHip, -0.12, hipY, 0)
	set(pose.LandmarkRightHip, 0.12, hipY, 0)
	set(pose.LandmarkLeftKnee, -0.14, 0.50*full, kneeForward)
	set(pose.LandmarkRightKnee, 0.14, 0.50*full, kneeForward)
	set(pose.LandmarkLeftAnkle, -0.14, 0.08, 0)
	set(pose.LandmarkRightAnkle, 0.14, 0.08, 0)
	set(pose.LandmarkLeftHeel, -0.14, 0.02, -0.05)
	set(pose.LandmarkRightHeel, 0.14, 0.02, -0.05)
	set(pose.LandmarkLeftFootIndex, -0.14, 0.02, 0.15)
	set(pose.LandmarkRightFootIndex, 0.14, 0.02, 0.15)
	return frame
}

// segmentsFrom maps processed landmarks onto the anthropometric body
// segments the balance engine works with. Segment positions are the
// midpoints of their bounding joints.
func segmentsFrom(p []pose.ProcessedLandmark) biomech.SegmentPositions {
	mid := func(a, b int) r3.Vec {
		return r3.Scale(0.5, r3.Add(p[a].Position, p[b].Position))
	}
	return biomech.SegmentPositions{
		biomech.SegmentHead:          p[pose.LandmarkNose].Position,
		biomech.SegmentTrunk:         r3.Scale(0.5, r3.Add(mid(pose.LandmarkLeftShoulder, pose.LandmarkRightShoulder), mid(pose.LandmarkLeftHip, pose.LandmarkRightHip))),
		biomech.SegmentLeftUpperArm:  mid(pose.LandmarkLeftShoulder, pose.LandmarkLeftElbow),
		biomech.SegmentRightUpperArm: mid(pose.LandmarkRightShoulder, pose.LandmarkRightElbow),
		biomech.SegmentLeftForearm:   mid(pose.LandmarkLeftElbow, pose.LandmarkLeftWrist),
		biomech.SegmentRightForearm:  mid(pose.LandmarkRightElbow, pose.LandmarkRightWrist),
		biomech.SegmentLeftHand:      p[pose.LandmarkLeftWrist].Position,
		biomech.SegmentRightHand:     p[pose.LandmarkRightWrist].Position,
		biomech.SegmentLeftThigh:     mid(pose.LandmarkLeftHip, pose.LandmarkLeftKnee),
		biomech.SegmentRightThigh:    mid(pose.LandmarkRightHip, pose.LandmarkRightKnee),
		biomech.SegmentLeftShank:     mid(pose.LandmarkLeftKnee, pose.LandmarkLeftAnkle),
		biomech.SegmentRightShank:    mid(pose.LandmarkRightKnee, pose.LandmarkRightAnkle),
		biomech.SegmentLeftFoot:      mid(pose.LandmarkLeftHeel, pose.LandmarkLeftFootIndex),
		biomech.SegmentRightFoot:     mid(pose.LandmarkRightHeel, pose.LandmarkRightFootIndex),
	}
}
