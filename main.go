package main

import (
	"context"
	"log"
	"os"
	"strings"
	"time"

	"github.com/alexflint/go-arg"
	"github.com/faiface/beep"
	"github.com/k0kubun/go-ansi"
	"github.com/schollz/progressbar/v3"

	"tjweldon/looper/src/assets"
	"tjweldon/looper/src/catalog"
	"tjweldon/looper/src/console"
	"tjweldon/looper/src/output"
	"tjweldon/looper/src/samples"
	"tjweldon/looper/src/scheduler"
	"tjweldon/looper/src/streams"
	"tjweldon/looper/src/util"
	"tjweldon/looper/src/visualizer"
)

type args struct {
	Config  string `arg:"-c,--config" help:"catalog and audio settings (yaml)"`
	Backend string `arg:"-b,--backend" help:"speaker, oto or headless"`
	Assets  string `arg:"-a,--assets" help:"directory the sample files live in"`
	Verbose bool   `arg:"-v,--verbose" help:"log every scheduling call"`
}

func (args) Description() string {
	return "looper plays instrument loops in lock step; toggle and swap them while they run"
}

var logger = util.Logger{Volume: util.Loud}.Ctx("main")

func main() {
	var a args
	arg.MustParse(&a)

	cfg, err := loadConfig(a)
	if err != nil {
		log.Fatal(err)
	}

	level, err := util.ParseLogVolume(cfg.LogLevel)
	if err != nil {
		log.Fatal(err)
	}
	if a.Verbose {
		level = util.Quiet
	}
	level.FilterBelow()

	ctx := context.Background()
	src, err := assetSource(ctx, cfg)
	if err != nil {
		log.Fatal(err)
	}
	defer src.Close()

	rate := beep.SampleRate(cfg.Audio.SampleRate)
	store := samples.NewStore(src, rate, cfg.Samples)
	mixer := streams.NewMixer(rate)

	out, err := output.New(cfg.Audio.Backend, mixer.Format(), cfg.Audio.Buffer, cfg.Audio.MasterVolume)
	if err != nil {
		log.Fatal(err)
	}
	defer out.Close()
	if err := out.Play(mixer); err != nil {
		log.Fatal(err)
	}

	sched := scheduler.New(cfg.Groups, mixer, store, scheduler.Options{
		LeadTime: cfg.Audio.LeadTime,
		Ramp:     cfg.Audio.Ramp,
	})

	bar := progressbar.NewOptions(
		len(cfg.SampleIDs()),
		progressbar.OptionSetWriter(ansi.NewAnsiStdout()),
		progressbar.OptionEnableColorCodes(true),
		progressbar.OptionSetTheme(progressbar.ThemeASCII),
		progressbar.OptionFullWidth(),
		progressbar.OptionShowCount(),
		progressbar.OptionSetDescription("[cyan]Loading samples...[reset]"),
	)
	err = sched.Load(ctx, func(s *samples.Sample) {
		bar.Describe("[cyan]Loaded[reset] " + s.ID())
		bar.Add(1)
	})
	bar.Finish()
	if err != nil {
		// no partial ensemble: the session never becomes ready
		log.Fatal(err)
	}
	logger.Log("ready:", strings.Join(cfg.SampleIDs(), ", "))

	c := &console.Console{Sched: sched, Output: out, Vis: visualizer.Default()}
	c.Vis.Width, c.Vis.Height = 60, 8
	if err := c.Run(os.Stdin, os.Stdout); err != nil {
		log.Fatal(err)
	}

	sched.Stop()
	mixer.Close()
	// let the ramp to silence reach the device before closing it
	time.Sleep(cfg.Audio.Buffer)
}

func loadConfig(a args) (*catalog.Config, error) {
	cfg := catalog.Default()
	if a.Config != "" {
		var err error
		if cfg, err = catalog.Load(a.Config); err != nil {
			return nil, err
		}
	}

	if a.Backend != "" {
		cfg.Audio.Backend = a.Backend
	}
	if a.Assets != "" {
		cfg.Assets.Root = a.Assets
	}
	return cfg, cfg.Validate()
}

// assetSource reads plain locations from disk, http(s) locations over the
// network and gs:// locations from GCS
func assetSource(ctx context.Context, cfg *catalog.Config) (*assets.Mux, error) {
	web := assets.HTTP{BaseURL: cfg.Assets.BaseURL}
	gcsCfg := cfg.Assets.GCS
	if gcsCfg.Bucket == "" && !anyPrefixed(cfg.Samples, "gs://") {
		return assets.NewMux(assets.Local{Root: cfg.Assets.Root}).
			Handle("http", web).
			Handle("https", web), nil
	}

	gcs, err := assets.NewGCS(ctx, gcsCfg.Bucket, gcsCfg.Prefix, gcsCfg.CredentialsFile)
	if err != nil {
		return nil, err
	}

	// with a bucket configured, plain locations are objects in it
	var fallback assets.Source = assets.Local{Root: cfg.Assets.Root}
	if gcsCfg.Bucket != "" {
		fallback = gcs
	}
	return assets.NewMux(fallback).
		Handle("http", web).
		Handle("https", web).
		Handle("gs", gcs), nil
}

func anyPrefixed(locations map[string]string, prefix string) bool {
	for _, loc := range locations {
		if strings.HasPrefix(loc, prefix) {
			return true
		}
	}
	return false
}
