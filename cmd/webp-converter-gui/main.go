package main

import (
	"flag"
	"log"

	"fyne.io/fyne/v2/app"

	webpconverter "github.com/menta2k/webp-converter"
	"github.com/menta2k/webp-converter/internal/config"
	"github.com/menta2k/webp-converter/ui/mainwindow"
)

func main() {
	var configPath, backend, url, model string
	var suggest bool

	flag.StringVar(&configPath, "config", config.GetConfigPath(), "settings file")
	flag.BoolVar(&suggest, "suggest", false, "enable vision model suggestions")
	flag.StringVar(&backend, "backend", "", "vision backend: ollama or llamacpp")
	flag.StringVar(&url, "url", "", "vision server URL")
	flag.StringVar(&model, "model", "", "vision model name")
	flag.Parse()

	log.SetFlags(log.LstdFlags | log.Lshortfile)
	log.Printf("WebP Converter v%s", webpconverter.Version)

	conv := webpconverter.New()
	if err := conv.LoadSettings(configPath); err != nil {
		log.Printf("Using default settings: %v", err)
	}

	vision := false
	if suggest {
		cfg := conv.Config()
		if backend != "" {
			cfg.Vision.Backend = backend
		}
		cfg.Resolve(config.Flags{VisionURL: url, VisionModel: model})
		if err := conv.EnableSuggestions(); err != nil {
			log.Printf("Suggestions disabled: %v", err)
		} else {
			vision = true
		}
	}

	a := app.NewWithID("com.menta2k.webp-converter")
	mw := mainwindow.New(a, conv, configPath, vision)
	if flag.NArg() > 0 {
		mw.AddPaths(flag.Args())
	}
	mw.ShowAndRun()
}
