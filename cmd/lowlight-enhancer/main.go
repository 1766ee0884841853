// Command lowlight-enhancer applies gamma correction, CLAHE, and
// per-channel thresholding to every image in a dataset directory,
// writing per-method outputs and labeled comparison panels.
//
// Usage:
//
//	lowlight-enhancer                          process the dataset
//	lowlight-enhancer -create                  pre-create the directory layout
//	lowlight-enhancer -analyze img1.png,img2.jpg
//	                                           also render histogram/CDF charts
package main

import (
	"context"
	"errors"
	"flag"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"lowlight-enhancer/internal/app"
)

func main() {
	config := app.DefaultConfig()

	flag.StringVar(&config.DatasetDir, "dataset", config.DatasetDir, "directory containing the source images")
	flag.StringVar(&config.OutputDir, "output", config.OutputDir, "directory for enhancement results")
	flag.BoolVar(&config.CreateOnly, "create", false, "create the directory layout and exit")
	flag.BoolVar(&config.Verbose, "verbose", false, "enable debug logging")
	analyze := flag.String("analyze", "", "comma-separated image names to render histogram/CDF charts for")
	flag.Parse()

	if *analyze != "" {
		for _, name := range strings.Split(*analyze, ",") {
			if trimmed := strings.TrimSpace(name); trimmed != "" {
				config.Analyze = append(config.Analyze, trimmed)
			}
		}
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	setupSignalHandling(cancel)

	application := app.NewApplication(config)
	if err := application.Run(ctx); err != nil {
		if errors.Is(err, context.Canceled) {
			log.Println("interrupted")
			os.Exit(130)
		}
		log.Fatalf("run failed: %v", err)
	}
}

func setupSignalHandling(cancel context.CancelFunc) {
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM, syscall.SIGINT)

	go func() {
		<-sigChan
		log.Println("signal received, shutting down...")
		cancel()
	}()
}
