package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"sort"
	"strings"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	webpconverter "github.com/menta2k/webp-converter"
	"github.com/menta2k/webp-converter/internal/config"
	"github.com/menta2k/webp-converter/internal/utils"
	"github.com/menta2k/webp-converter/pkg/batch"
	"github.com/menta2k/webp-converter/pkg/cropper"
	"github.com/menta2k/webp-converter/pkg/detection"
	"github.com/menta2k/webp-converter/pkg/types"
)

func main() {
	var configPath, outDir, preset, keywords, aspect, cropSpec string
	var backend, url, model, metricsAddr string
	var quality, workers int
	var lossless, autoCrop, suggest, dryRun, save, version bool

	flag.StringVar(&configPath, "config", config.GetConfigPath(), "settings file")
	flag.StringVar(&outDir, "out", "", "output directory (default from settings: ~/WebP_Output)")
	flag.IntVar(&quality, "quality", 0, "WebP quality 1-100 (default from settings: 75)")
	flag.StringVar(&preset, "preset", "", "quality preset name, e.g. \"SEO (70)\"")
	flag.BoolVar(&lossless, "lossless", false, "lossless WebP")
	flag.IntVar(&workers, "workers", 0, "parallel conversions (default from settings: 1)")

	flag.StringVar(&keywords, "keywords", "", "rename all outputs from these space separated keywords")
	flag.StringVar(&aspect, "aspect", "", "center crop every image to a ratio: W:H or a preset (wide, square, ...)")
	flag.StringVar(&cropSpec, "crop", "", "crop every image to x,y,w,h source pixels")
	flag.BoolVar(&autoCrop, "auto-crop", false, "place crops over the busiest part of each image instead of the center")

	flag.BoolVar(&suggest, "suggest", false, "ask a vision model for keywords and a subject crop")
	flag.StringVar(&backend, "backend", "", "vision backend: ollama or llamacpp")
	flag.StringVar(&url, "url", "", "vision server URL")
	flag.StringVar(&model, "model", "", "vision model name")

	flag.StringVar(&metricsAddr, "metrics-addr", "", "serve Prometheus metrics on this address, e.g. :9090")
	flag.BoolVar(&dryRun, "dry-run", false, "print the planned names and crops without converting")
	flag.BoolVar(&save, "save", false, "write the resolved quality settings back to -config")
	flag.BoolVar(&version, "version", false, "print version and exit")

	flag.Usage = func() {
		fmt.Fprintf(flag.CommandLine.Output(), "usage: %s [flags] image|dir ...\n", filepath.Base(os.Args[0]))
		flag.PrintDefaults()
	}
	flag.Parse()

	if version {
		fmt.Println(webpconverter.GetVersion())
		return
	}
	if flag.NArg() == 0 {
		flag.Usage()
		os.Exit(2)
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		log.Fatalf("Failed to load settings: %v", err)
	}
	cfg.Resolve(config.Flags{
		OutputDir:   outDir,
		Quality:     quality,
		Lossless:    lossless,
		Workers:     workers,
		VisionURL:   url,
		VisionModel: model,
	})
	if backend != "" {
		cfg.Vision.Backend = backend
	}
	if preset != "" {
		q, ok := cfg.QualityPresets[preset]
		if !ok {
			log.Fatalf("Unknown preset %q (have %s)", preset, strings.Join(cfg.PresetNames(), ", "))
		}
		cfg.Quality = q
	}
	if err := cfg.Validate(); err != nil {
		log.Fatalf("Invalid settings: %v", err)
	}

	ratio, err := parseAspect(aspect)
	if err != nil {
		log.Fatal(err)
	}
	crop, err := parseCrop(cropSpec)
	if err != nil {
		log.Fatal(err)
	}

	conv := webpconverter.NewWithConfig(cfg)

	added, err := conv.AddFiles(flag.Args())
	if err != nil {
		log.Printf("Some files were skipped: %v", err)
	}
	if added == 0 {
		log.Fatal("No images to convert")
	}
	log.Printf("Queued %d images, quality %d (%s), output %s", added, cfg.Quality, cfg.PresetName(cfg.Quality), conv.OutputDir())

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	applyCrops(conv, crop, ratio, autoCrop)

	if suggest {
		suggested := runSuggestions(ctx, conv, ratio)
		if keywords == "" && len(suggested) >= 2 {
			keywords = strings.Join(suggested, " ")
			log.Printf("Using suggested keywords: %s", keywords)
		}
	}

	if keywords != "" {
		summary, err := conv.RenameAll(keywords)
		if err != nil {
			log.Fatalf("Rename failed: %v", err)
		}
		log.Print(summary.Status())
	}

	if dryRun {
		for i, item := range conv.Items() {
			area := "full"
			if item.Crop != nil {
				area = item.Crop.String()
			}
			fmt.Printf("%3d. %s -> %s.webp [%s]\n", i+1, item.Filename(), item.BaseName(), area)
		}
		return
	}

	if metricsAddr != "" {
		reg := prometheus.NewRegistry()
		conv.SetMetrics(batch.NewMetrics(reg))
		http.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))
		go func() {
			if err := http.ListenAndServe(metricsAddr, nil); err != nil {
				log.Printf("Metrics server stopped: %v", err)
			}
		}()
		log.Printf("Serving metrics on %s/metrics", metricsAddr)
	}

	results, err := conv.Convert(ctx, func(e batch.Event) {
		switch e.Kind {
		case batch.EventDone:
			log.Printf("[%d/%d] wrote %s (%.1f KB)", e.Completed, e.Total, e.Path, e.SizeKB)
		case batch.EventError:
			log.Printf("[%d/%d] failed: %v", e.Completed, e.Total, e.Err)
		}
	})
	if errors.Is(err, batch.ErrCancelled) {
		log.Printf("Conversion cancelled: %v", err)
	} else if err != nil {
		log.Fatalf("Conversion failed: %v", err)
	}

	var total int64
	failed := 0
	for _, r := range results {
		if !r.Success {
			failed++
			continue
		}
		total += int64(r.SizeKB * 1024)
	}
	log.Printf("Done: %d converted, %d failed, %s written", len(results)-failed, failed, utils.FormatFileSize(total))

	if save {
		if err := conv.SaveSettings(configPath); err != nil {
			log.Printf("Failed to save settings: %v", err)
		}
	}
	if failed > 0 {
		os.Exit(1)
	}
}

// applyCrops sets the same explicit crop, or a crop at ratio, on every item.
// Without auto the ratio crop is centered.
func applyCrops(conv *webpconverter.Converter, crop *types.Rect, ratio cropper.AspectRatio, auto bool) {
	if crop == nil && ratio.IsFree() && !auto {
		return
	}
	for i, item := range conv.Items() {
		if auto && crop == nil {
			r, err := conv.AutoCrop(i, ratio)
			if err != nil {
				log.Printf("auto crop %s: %v", item.Filename(), err)
				continue
			}
			log.Printf("%s: crop=%s", item.Filename(), r)
			continue
		}

		session, err := conv.CropSession(i)
		if err != nil {
			log.Printf("crop %s: %v", item.Filename(), err)
			continue
		}
		session.SetAspectRatio(ratio)
		if crop != nil {
			session.SetRect(*crop)
		}
		conv.ApplyCrop(i, session.Rect())
	}
}

// runSuggestions crops every item around the subject the model finds and
// returns the keywords it proposed, most frequent first
func runSuggestions(ctx context.Context, conv *webpconverter.Converter, ratio cropper.AspectRatio) []string {
	if err := conv.EnableSuggestions(); err != nil {
		log.Fatalf("Vision backend: %v", err)
	}
	desc, err := conv.Describe(ctx, 0)
	if err != nil {
		log.Fatalf("Vision model cannot read images: %v", err)
	}
	log.Printf("Vision check: %s", desc)

	counts := map[string]int{}
	var order []string
	for i, item := range conv.Items() {
		s, err := conv.Suggest(ctx, i)
		if err != nil {
			log.Printf("suggest %s: %v", item.Filename(), err)
			continue
		}
		r, err := conv.ApplySuggestion(i, s, ratio)
		if err != nil {
			log.Printf("suggest %s: %v", item.Filename(), err)
			continue
		}
		log.Printf("%s: %q crop=%s keywords=%v", item.Filename(), s.Label, r, s.Keywords)
		for _, k := range s.Keywords {
			if counts[k] == 0 {
				order = append(order, k)
			}
			counts[k]++
		}
	}

	sort.SliceStable(order, func(i, j int) bool {
		return counts[order[i]] > counts[order[j]]
	})
	return detection.NormalizeKeywords(order, conv.Config().Naming.MaxKeywords)
}

