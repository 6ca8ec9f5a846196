package main // import "dashhost"

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"time"

	log "github.com/sirupsen/logrus"

	"dashhost/dashlink"
	"dashhost/internal/config"
	"dashhost/internal/imagesource"
	"dashhost/internal/scheduler"
	"dashhost/internal/simulator"
)

func render(r config.RenderConfig) imagesource.Render {
	return imagesource.Render{
		Format:    r.Format,
		Width:     r.Width,
		Height:    r.Height,
		SwapBytes: r.SwapBytes,
	}
}

func checksumFor(name string) (dashlink.Checksum, error) {
	switch name {
	case "", "none":
		return dashlink.NoChecksum(), nil
	case "crc32":
		return dashlink.CRC32Checksum(), nil
	}
	return nil, fmt.Errorf("unknown checksum %q", name)
}

func buildFeeds(cfg *config.Config) []*scheduler.Feed {
	var feeds []*scheduler.Feed
	if cfg.Image != nil {
		feeds = append(feeds, &scheduler.Feed{
			Name: "local",
			Source: &imagesource.Rendered{
				Source: &imagesource.File{Path: cfg.Image.Path},
				Render: render(cfg.Image.Render),
			},
			Interval: time.Duration(cfg.Image.EverySec * float64(time.Second)),
		})
	}
	if cfg.Remote != nil {
		timeout := time.Duration(cfg.Remote.TimeoutSec * float64(time.Second))
		feeds = append(feeds, &scheduler.Feed{
			Name: "remote",
			Source: &imagesource.Rendered{
				Source: imagesource.NewRemote(cfg.Remote.URL, timeout),
				Render: render(cfg.Remote.Render),
			},
			Interval: time.Duration(cfg.Remote.EverySec * float64(time.Second)),
		})
	}
	return feeds
}

func runDemo(cfg *config.Config, sender *dashlink.Sender) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	sched := scheduler.New(sender, simulator.New(), cfg.Telemetry.RateHz, buildFeeds(cfg)...)
	return sched.Run(ctx)
}

type onceFlags struct {
	speed   int
	rpm     int
	odo     int
	trip    int
	outT    float64
	inT     float64
	batt    int
	clock   string
	tripMin int
	fuel    float64
	fuelCap float64
}

func runOnce(cfg *config.Config, sender *dashlink.Sender, o *onceFlags) error {
	clockMin, err := dashlink.ParseClock(o.clock)
	if err != nil {
		return err
	}
	snap := dashlink.Snapshot{
		SpeedKMH:      int16(o.speed),
		EngineRPM:     int16(o.rpm),
		OdoM:          int32(o.odo),
		TripOdoM:      int32(o.trip),
		OutsideTempDC: int16(o.outT * 10),
		InsideTempDC:  int16(o.inT * 10),
		BatteryMV:     int16(o.batt),
		ClockMin:      clockMin,
		TripMin:       uint16(o.tripMin),
		FuelDL:        uint16(o.fuel * 10),
		FuelCapDL:     uint16(o.fuelCap * 10),
	}
	if err := sender.SendTelemetry(snap); err != nil {
		return err
	}
	if cfg.Image == nil {
		return nil
	}
	src := &imagesource.Rendered{
		Source: &imagesource.File{Path: cfg.Image.Path},
		Render: render(cfg.Image.Render),
	}
	data, err := src.Fetch()
	if err != nil {
		return err
	}
	return sender.SendImage(data)
}

func main() {
	configPath := flag.String("config", "", "Path to a YAML configuration file")
	listPorts := flag.Bool("list-ports", false, "List available serial ports and exit")
	mode := flag.String("mode", "demo", "demo, once or reboot")

	port := flag.String("port", "", "Serial port (e.g. /dev/ttyACM0 or COM5), or tcp:host:port")
	baud := flag.Int("baud", 115200, "Serial baud rate")
	checksum := flag.String("checksum", "none", "Frame checksum: none or crc32")

	hz := flag.Float64("hz", 24, "Telemetry frames per second (demo mode)")
	png := flag.String("png", "", "PNG file to send as the image frame")
	pngEvery := flag.Float64("png-every", 29, "Seconds between image frames (demo mode)")
	format := flag.String("format", "png", "Image payload format: png or r565")
	width := flag.Int("width", 0, "RGB565 target width")
	height := flag.Int("height", 0, "RGB565 target height")
	swap := flag.Bool("swap", false, "Swap RGB565 sample bytes")
	remoteURL := flag.String("remote-url", "", "Chart renderer endpoint for the remote image feed")
	remoteEvery := flag.Float64("remote-every", 60, "Seconds between remote image fetches")

	once := &onceFlags{}
	flag.IntVar(&once.speed, "speed", 80, "Speed in km/h (once mode)")
	flag.IntVar(&once.rpm, "rpm", 1800, "Engine speed in rpm (once mode)")
	flag.IntVar(&once.odo, "odo", 123000, "Odometer in meters (once mode)")
	flag.IntVar(&once.trip, "trip", 12340, "Trip odometer in meters (once mode)")
	flag.Float64Var(&once.outT, "out-t", 5, "Outside temperature in C (once mode)")
	flag.Float64Var(&once.inT, "in-t", 22, "Inside temperature in C (once mode)")
	flag.IntVar(&once.batt, "batt", 12150, "Battery voltage in mV (once mode)")
	flag.StringVar(&once.clock, "time", "12:34", "Current time as HH:MM (once mode)")
	flag.IntVar(&once.tripMin, "trip-min", 0, "Trip elapsed minutes (once mode)")
	flag.Float64Var(&once.fuel, "fuel", 36, "Fuel remaining in liters (once mode)")
	flag.Float64Var(&once.fuelCap, "fuel-cap", 52, "Fuel capacity in liters (once mode)")

	debug := flag.Bool("debug", false, "Set logging level to debug")
	trace := flag.Bool("trace", false, "Set logging level to trace. Implies debug.")
	flag.Parse()

	if *trace {
		log.SetLevel(log.TraceLevel)
	} else if *debug {
		log.SetLevel(log.DebugLevel)
	}

	if *listPorts {
		ports, err := dashlink.AvailablePorts()
		if err != nil {
			log.Fatalf("error listing ports: %v", err)
		}
		for _, p := range ports {
			fmt.Println(p)
		}
		return
	}

	var cfg *config.Config
	if *configPath != "" {
		c, err := config.Load(*configPath)
		if err != nil {
			log.Fatalf("config load failed: %v", err)
		}
		cfg = c
	} else {
		cfg = config.Default()
	}

	// Explicitly set flags win over the configuration file.
	if *png != "" && cfg.Image == nil {
		cfg.Image = &config.ImageConfig{EverySec: *pngEvery}
	}
	if *remoteURL != "" && cfg.Remote == nil {
		cfg.Remote = &config.RemoteConfig{EverySec: *remoteEvery, TimeoutSec: 10}
	}
	flag.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "port":
			cfg.Link.Port = *port
		case "baud":
			cfg.Link.Baud = *baud
		case "checksum":
			cfg.Link.Checksum = *checksum
		case "hz":
			cfg.Telemetry.RateHz = *hz
		}
		if cfg.Image != nil {
			switch f.Name {
			case "png":
				cfg.Image.Path = *png
			case "png-every":
				cfg.Image.EverySec = *pngEvery
			case "format":
				cfg.Image.Render.Format = *format
			case "width":
				cfg.Image.Render.Width = *width
			case "height":
				cfg.Image.Render.Height = *height
			case "swap":
				cfg.Image.Render.SwapBytes = *swap
			}
		}
		if cfg.Remote != nil {
			switch f.Name {
			case "remote-url":
				cfg.Remote.URL = *remoteURL
			case "remote-every":
				cfg.Remote.EverySec = *remoteEvery
			}
		}
	})

	if err := config.Validate(cfg); err != nil {
		log.Fatalf("invalid configuration: %v", err)
	}

	cs, err := checksumFor(cfg.Link.Checksum)
	if err != nil {
		log.Fatalf("invalid configuration: %v", err)
	}

	conn, err := dashlink.Open(cfg.Link.Port, cfg.Link.Baud)
	if err != nil {
		log.Fatalf("error opening %s: %v", cfg.Link.Port, err)
	}
	defer conn.Close()

	sender := dashlink.NewSender(conn, cs)

	switch *mode {
	case "demo":
		err = runDemo(cfg, sender)
	case "once":
		err = runOnce(cfg, sender, once)
	case "reboot":
		err = sender.SendReboot()
	default:
		err = fmt.Errorf("unknown mode %q", *mode)
	}
	if err != nil {
		conn.Close()
		log.Fatalf("%v", err)
	}
}
