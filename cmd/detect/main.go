// Command detect runs the detection pipeline over a single image and
// prints the resulting boxes, mainly as a smoke-test harness for models
// and label files.
package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"go.uber.org/zap"

	"github.com/armaint/go-detect/detectors"
	"github.com/armaint/go-detect/images"
	"github.com/armaint/go-detect/inference"
)

func main() {
	var (
		modelPath  = flag.String("model", "", "path to the ONNX model file")
		labelsPath = flag.String("labels", "", "path to the newline-delimited class name file")
		imagePath  = flag.String("image", "", "path to the input image (jpeg/png/webp)")
		libPath    = flag.String("onnxruntime", "", "path to the onnxruntime shared library")
		confidence = flag.Float64("confidence", detectors.DefaultConfidenceThreshold, "confidence threshold")
		iou        = flag.Float64("iou", detectors.DefaultIoUThreshold, "NMS IoU threshold")
		accel      = flag.Bool("accel", true, "attempt the neural accelerator backend")
		gpu        = flag.Bool("gpu", true, "attempt the GPU backend")
	)
	flag.Parse()

	if *modelPath == "" || *imagePath == "" {
		flag.Usage()
		os.Exit(2)
	}
	if *libPath != "" {
		inference.SetSharedLibrary(*libPath)
	}

	logger, err := zap.NewDevelopment()
	if err != nil {
		log.Fatalf("creating logger: %v", err)
	}
	defer logger.Sync()

	model, err := os.ReadFile(*modelPath)
	if err != nil {
		logger.Fatal("reading model", zap.Error(err))
	}

	var names []string
	if *labelsPath != "" {
		if names, err = inference.LoadClassNames(*labelsPath); err != nil {
			logger.Fatal("reading labels", zap.Error(err))
		}
	}

	img, err := images.LoadFile(*imagePath)
	if err != nil {
		logger.Fatal("reading image", zap.Error(err))
	}

	cfg := detectors.DefaultConfig()
	cfg.Model = model
	cfg.ClassNames = names
	cfg.NeuralAccelerator = *accel
	cfg.GPU = *gpu
	cfg.ConfidenceThreshold = float32(*confidence)
	cfg.IoUThreshold = float32(*iou)
	cfg.Logger = logger

	detector, err := detectors.NewDetector(cfg)
	if err != nil {
		logger.Fatal("initializing detector", zap.Error(err))
	}
	defer detector.Close()

	start := time.Now()
	results := detector.Detect(img)
	elapsed := time.Since(start)

	fmt.Printf("%d detections in %s (%s backend)\n",
		len(results), elapsed.Round(time.Millisecond), detector.Backend().Kind)
	for _, det := range results {
		fmt.Printf("  %-20s %.3f  %v\n", det.Label, det.Confidence, det.Box)
	}
}
