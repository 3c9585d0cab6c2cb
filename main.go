package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"time"

	"github.com/robmorgan/playhead/axis"
	"github.com/robmorgan/playhead/config"
	"github.com/robmorgan/playhead/effect"
	"github.com/robmorgan/playhead/fixture"
	"github.com/robmorgan/playhead/motion"
	"github.com/robmorgan/playhead/sequencer"
	"github.com/robmorgan/playhead/timing"
	"github.com/robmorgan/playhead/utils"
	"k8s.io/utils/clock"
)

const fadeSteps = 20

func main() {
	ctx := context.Background()
	Run(ctx)
}

// Run starts the console
func Run(ctx context.Context) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	// initialize the global config
	cfg, err := config.NewPlayheadConfig()
	if err != nil {
		panic("error creating config")
	}
	logger := cfg.Logger
	logger.Info("Initializing config...")

	// load the show
	show, err := config.LoadShow("show.yaml")
	if err != nil {
		logger.Warnf("could not load show.yaml, falling back to the built-in show. err='%v'", err)
		show = builtinShow()
	}
	logger.Infof("Loaded show: %s (%d cues)", show.Name, len(show.Cues))

	// initialize the fixtures addressed by the show
	logger.Info("Initializing fixtures...")
	fixtures := make(map[string]*fixture.Fixture)
	for _, c := range show.Cues {
		if c.Fixture == "" {
			continue
		}
		if _, ok := fixtures[c.Fixture]; !ok {
			fixtures[c.Fixture] = fixture.NewFixture(c.Fixture)
		}
	}

	// build the axis
	ax := axis.New[string, config.ShowCue]()
	batch, err := show.Batch()
	if err != nil {
		logger.Fatalf("invalid show. err='%v'", err)
	}

	// wire the sequencer to the local timing source
	src := timing.NewLocalSource(timing.NewClock(clock.RealClock{}))
	seq := sequencer.New(ax, src)
	fade := effect.NewEffect("in-quart", 0.5)

	seq.AddCallback(func(changes []sequencer.Change[string, config.ShowCue]) {
		for _, ch := range changes {
			switch {
			case ch.Old == nil:
				cue := ch.New
				rgb := utils.GetRGBFromString(cue.Data.Color)
				fmt.Printf("%s %s\n", utils.FgString(rgb, "●"), cue.Data.Text)
				if fx, ok := fixtures[cue.Data.Fixture]; ok {
					fx.SetColor(rgb.Color)
					go fadeIn(ctx, fx, cue.Data.Intensity, fade)
				}
			case ch.New == nil:
				cue := ch.Old
				if fx, ok := fixtures[cue.Data.Fixture]; ok {
					if err := fx.Reset(); err != nil {
						logger.Errorf("could not reset fixture %s. err='%v'", fx.Name, err)
					}
				}
			}
		}
	})

	seq.Start(ctx)

	if _, err := ax.Update(batch); err != nil {
		logger.Fatalf("error loading cues onto the axis. err='%v'", err)
	}

	logger.Info("Starting the playhead...")
	err = src.Update(motion.Vector{
		Position:     show.Vector.Position,
		Velocity:     show.Vector.Velocity,
		Acceleration: show.Vector.Acceleration,
	})
	if err != nil {
		logger.Fatalf("error starting the playhead. err='%v'", err)
	}

	// run until we're interrupted
	interrupt := make(chan os.Signal, 1)
	signal.Notify(interrupt, os.Interrupt)
	select {
	case <-interrupt:
		logger.Info("Shutting down...")
	case <-ctx.Done():
	}
	seq.Close()
}

// fadeIn ramps the fixture up to target following the fade effect.
func fadeIn(ctx context.Context, fx *fixture.Fixture, target float64, fade *effect.Effect) {
	stepTime := time.Duration(fade.Attack / fadeSteps * float64(time.Second))
	for i := 1; i <= fadeSteps; i++ {
		select {
		case <-ctx.Done():
			return
		case <-time.After(stepTime):
		}
		elapsed := fade.Attack * float64(i) / fadeSteps
		fx.SetIntensity(target * fade.Level(elapsed))
	}
}
