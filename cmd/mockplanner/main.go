// Command mockplanner drives a motioncore.Core against internal/simhal
// from a text script of synthetic blocks, for exercising the motion
// core on a host with no attached hardware. It mirrors the shape of
// examples/tmc2209 and examples/tmc5160: a small, single-purpose
// runnable demonstrating one package against real hardware-shaped
// collaborators, except here every collaborator is a host-side fake.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/laserctl/motioncore"
	"github.com/laserctl/motioncore/internal/simhal"
)

func main() {
	scriptPath := flag.String("script", "", "path to a block script (default: stdin)")
	display := flag.Bool("display", false, "render a diagnostics frame to a simulated status panel after each step event")
	broker := flag.String("mqtt", "", "MQTT broker address (e.g. tcp://localhost:1883); telemetry disabled if empty")
	proxyAddr := flag.String("mqtt-proxy", "", "SOCKS5 proxy address used to probe broker reachability before the host-side MQTT subscriber connects")
	debug := flag.Bool("debug", false, "enable motion-core debug logging")
	flag.Parse()

	cfg := motioncore.Config{
		FCPU:                       16_000_000,
		AccelerationTicksPerSecond: 100,
		MinimumStepsPerMinute:      60,
		PulseMicroseconds:          4,
		StepsPerMM:                 [3]float64{80, 80, 400},
		BeamDynamicsEvery:          1,
		BeamDynamicsStart:          0.1,
		HomingRate:                 600,
		EnableLaserInterlocks:      true,
	}

	hal := simhal.New()
	planner := simhal.NewPlanner()
	raster := simhal.NewRasterRing(4096)

	core := motioncore.New(cfg, hal, planner, raster)
	core.SetDebug(*debug)
	core.Init()

	scriptFile := os.Stdin
	if *scriptPath != "" {
		f, err := os.Open(*scriptPath)
		if err != nil {
			log.Fatalf("mockplanner: %v", err)
		}
		defer f.Close()
		scriptFile = f
	}
	if err := loadScript(scriptFile, planner); err != nil {
		log.Fatalf("mockplanner: %v", err)
	}

	var panel *statusPanel
	if *display {
		panel = newStatusPanel()
	}

	var publisher *devicePublisher
	if *broker != "" {
		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()
		p, err := dialDevicePublisher(ctx, brokerHostPort(*broker), "mockplanner")
		if err != nil {
			log.Printf("mockplanner: telemetry disabled: %v", err)
		} else {
			publisher = p
		}

		sub, err := dialHostSubscriber(*broker, *proxyAddr, func(frame telemetryFrame) {
			fmt.Printf("telemetry: %+v\n", frame)
		})
		if err != nil {
			log.Printf("mockplanner: host subscriber disabled: %v", err)
		} else {
			defer sub.Close()
		}
	}

	if err := core.StartProcessing(); err != nil {
		log.Fatalf("mockplanner: %v", err)
	}
	for planner.Len() > 0 || core.Snapshot().HasBlock {
		core.StepTick()

		snap := core.Snapshot()
		if panel != nil {
			panel.Update(snap)
			fmt.Print(panel.disp.Render())
		}
		if publisher != nil {
			if err := publisher.Publish(snap); err != nil {
				log.Printf("mockplanner: publish: %v", err)
			}
		}
		if core.StopRequested() {
			fmt.Printf("stopped: %s\n", core.StopStatus())
			return
		}
	}

	fmt.Printf("done: x=%.3f y=%.3f z=%.3f\n", core.GetPositionX(), core.GetPositionY(), core.GetPositionZ())
}
