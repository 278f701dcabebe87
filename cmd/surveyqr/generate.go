package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/orafadelg/surveyqr/internal/cli"
	"github.com/orafadelg/surveyqr/internal/export"
	"github.com/orafadelg/surveyqr/internal/logger"
	"github.com/orafadelg/surveyqr/internal/qr"
	"github.com/orafadelg/surveyqr/internal/survey"
)

var (
	storeID      string
	orderID      string
	extraParams  []string
	withTS       bool
	withSig      bool
	secretFlag   string
	formatsInput []string
	boxSize      int
	outputDir    string
	urlOnly      bool
)

var generateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Build one signed survey link and write its QR images",
	Long: `Build the survey URL for a single transaction, optionally sign it, and
write the QR code to disk as PNG and/or SVG.`,
	RunE: runGenerate,
}

func init() {
	generateCmd.Flags().StringVar(&storeID, "store", "", "store_id parameter")
	generateCmd.Flags().StringVar(&orderID, "order", "", "order_id parameter")
	generateCmd.Flags().StringSliceVarP(&extraParams, "param", "p", []string{}, "Extra key=value parameters (can be used multiple times)")
	generateCmd.Flags().BoolVar(&withTS, "ts", true, "Include a ts timestamp parameter")
	generateCmd.Flags().BoolVar(&withSig, "sign", false, "Sign parameters with HMAC-SHA256 (sig)")
	generateCmd.Flags().StringVar(&secretFlag, "secret", "", "Signing secret (falls back to SIGNING_SECRET)")
	generateCmd.Flags().StringSliceVarP(&formatsInput, "format", "f", []string{"png"}, "Output formats: png, svg")
	generateCmd.Flags().IntVar(&boxSize, "size", qr.DefaultBoxSize, "Module (box) size in pixels, 6-16")
	generateCmd.Flags().StringVarP(&outputDir, "out", "o", ".", "Output directory")
	generateCmd.Flags().BoolVar(&urlOnly, "url-only", false, "Print the URL without rendering images")
}

func runGenerate(cmd *cobra.Command, args []string) error {
	log, err := logger.InitForCLI(cfg.App.LogLevel)
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	defer func() {
		_ = log.Sync()
	}()

	params, err := cli.NewParamParser().Parse(extraParams)
	if err != nil {
		return err
	}
	if orderID != "" {
		ordered := survey.NewParams()
		if storeID != "" {
			ordered.Set("store_id", survey.String(storeID))
		}
		ordered.Set("order_id", survey.String(orderID))
		for _, pair := range params.Pairs() {
			ordered.Set(pair.Key, pair.Value)
		}
		params = ordered
	} else if storeID != "" {
		ordered := survey.NewParams().Set("store_id", survey.String(storeID))
		for _, pair := range params.Pairs() {
			ordered.Set(pair.Key, pair.Value)
		}
		params = ordered
	}

	secret := secretFlag
	if secret == "" {
		secret = cfg.Survey.SigningSecret
	}
	sign := withSig
	if sign && secret == "" {
		// Never sign with an empty key; an unsigned link still works.
		log.Warn("Signing requested but no secret configured, emitting unsigned link")
		sign = false
	}

	link, err := survey.Request{
		Domain:     cfg.Survey.Domain,
		SurveyCode: cfg.Survey.SurveyCode,
		Params:     params,
		Timestamp:  withTS,
		Sign:       sign,
		Secret:     secret,
	}.Build()
	if err != nil {
		return err
	}

	var files []string
	if !urlOnly {
		generator := qr.NewGenerator(boxSize)
		for _, formatInput := range formatsInput {
			format, err := export.ParseFormat(formatInput)
			if err != nil {
				return err
			}

			var data []byte
			if format == export.FormatSVG {
				data, err = generator.SVG(link.URL)
			} else {
				data, err = generator.PNG(link.URL)
			}
			if err != nil {
				return err
			}

			path, err := export.WriteFile(outputDir, cfg.Survey.SurveyCode, orderID, format, data)
			if err != nil {
				return err
			}
			files = append(files, path)
		}
	}

	cli.NewSummaryPrinter().PrintSummary(link, files)
	return nil
}
