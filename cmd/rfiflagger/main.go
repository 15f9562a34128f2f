package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"rfiflagger/pkg/config"
	"rfiflagger/pkg/element"
	"rfiflagger/pkg/pipeline"
	"rfiflagger/pkg/report"
)

func main() {
	// Parse command line arguments
	visPath := flag.String("vis", "", "Calibrated visibility block file")
	flagPath := flag.String("flags", "", "Initial flag block file (optional, all-unflagged if omitted)")
	rfiPath := flag.String("rfi", "", "Precomputed RFI detector mask file (optional, built-in threshold detector if omitted)")
	outputPath := flag.String("output", "flags_out.bin", "Output combined flag mask file")
	reportPath := flag.String("report", "", "Flag report file (overrides config)")
	configPath := flag.String("config", "rfiflagger.yaml", "Configuration file")
	numCores := flag.Int("cores", 0, "Number of receivers to process concurrently (overrides config)")
	flag.Parse()

	// Validate inputs
	if *visPath == "" {
		flag.Usage()
		os.Exit(1)
	}

	cfg, err := config.LoadConfig(*configPath)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	if *numCores > 0 {
		cfg.Processing.NumCores = *numCores
	}
	if *reportPath != "" {
		cfg.Output.ReportFile = *reportPath
	}
	if err := cfg.Validate(); err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}

	fmt.Println("================================")
	fmt.Println("RFI FLAG POST-PROCESSING FOR CALIBRATED TIME-ORDERED DATA")
	fmt.Println("================================")

	// Load the data block
	vis, err := element.ReadElement(*visPath)
	if err != nil {
		log.Fatalf("Failed to read visibility block: %v", err)
	}
	nTime, nFreq, nRecv := vis.Shape()
	fmt.Printf("Loaded visibility block with %d time dumps, %d channels, %d receivers\n",
		nTime, nFreq, nRecv)

	var initialFlag *element.FlagElement
	if *flagPath != "" {
		initialFlag, err = element.ReadFlagElement(*flagPath)
		if err != nil {
			log.Fatalf("Failed to read initial flag block: %v", err)
		}
	} else {
		initialFlag, err = element.ZerosFlagElement(nTime, nFreq, nRecv)
		if err != nil {
			log.Fatalf("Failed to create initial flag block: %v", err)
		}
	}

	// Pick the detector: a precomputed mask when supplied, otherwise the
	// built-in lower-threshold screening of the raw visibilities.
	var detector pipeline.Detector
	if *rfiPath != "" {
		mask, err := element.ReadFlagElement(*rfiPath)
		if err != nil {
			log.Fatalf("Failed to read RFI mask: %v", err)
		}
		detector = pipeline.PrecomputedDetector(mask)
		fmt.Printf("Using precomputed RFI mask from %s\n", *rfiPath)
	} else {
		detector = pipeline.ThresholdDetector(cfg.Rawdata.FlagLowerThreshold)
		fmt.Printf("Using built-in threshold detector (lower threshold %v)\n",
			cfg.Rawdata.FlagLowerThreshold)
	}

	reporter := report.NewWriter(cfg.Output.ReportFile)
	runner, err := pipeline.NewRunner(cfg, detector, reporter)
	if err != nil {
		log.Fatalf("Failed to set up pipeline: %v", err)
	}

	// Run the flagging pipeline
	fmt.Println("Starting RFI flag post-processing...")
	startTime := time.Now()
	combined, fractions, err := runner.Run(vis, initialFlag)
	if err != nil {
		log.Fatalf("Flag post-processing failed: %v", err)
	}
	processingTime := time.Since(startTime)

	if err := element.WriteFlagElement(*outputPath, combined); err != nil {
		log.Fatalf("Failed to write combined flag mask: %v", err)
	}

	fmt.Printf("\nFlag post-processing completed successfully in %.2f seconds!\n",
		processingTime.Seconds())
	fmt.Printf("Combined flag mask saved to: %s\n", *outputPath)
	fmt.Printf("Flag report appended to: %s\n\n", cfg.Output.ReportFile)

	fmt.Printf("Flagged fraction per receiver:\n")
	fmt.Printf("==============================\n")
	for _, rf := range fractions {
		fmt.Printf("%s  %v\n", rf.Receiver.Name, rf.Fraction)
	}
}
