// adgen is the command-line front end of the pipeline: generate a campaign
// for a stored app profile and optionally publish it right away.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"

	"go.uber.org/zap"

	"github.com/adforge/backend/internal/campaign"
	"github.com/adforge/backend/internal/config"
	"github.com/adforge/backend/internal/events"
	"github.com/adforge/backend/internal/genai"
	"github.com/adforge/backend/internal/generator"
	"github.com/adforge/backend/internal/imagekit"
	"github.com/adforge/backend/internal/models"
	"github.com/adforge/backend/internal/repositories"
	"github.com/adforge/backend/internal/social"
)

func main() {
	var (
		appSlug    = flag.String("app", "", "slug of the app profile to advertise")
		platforms  = flag.String("platforms", "", "comma-separated platforms (default: all)")
		withImages = flag.Bool("images", false, "generate ad images")
		post       = flag.Bool("post", false, "publish the campaign after generating it")
		campaignID = flag.String("campaign", "", "post an existing campaign instead of generating")
	)
	flag.Parse()

	log, _ := zap.NewDevelopment()
	defer log.Sync()

	cfg, err := config.Load()
	if err != nil {
		log.Fatal("failed to load config", zap.Error(err))
	}
	cfg.Validate(log)

	campaignRepo := repositories.NewCampaignRepo(cfg.OutputDir, log)
	appRepo := repositories.NewAppRepo(cfg.AppTemplatesPath, log)

	textClient := genai.NewClient(cfg.GenAIBaseURL, cfg.TextModel, cfg.GoogleAPIKey, log)
	imageClient := genai.NewImageClient(cfg.GenAIBaseURL, cfg.ImageModel, cfg.GoogleAPIKey, log)
	contentGen := generator.NewContentGenerator(textClient, cfg.Platforms, log)
	imageGen := generator.NewImageGenerator(imageClient, cfg.Platforms, cfg.OutputDir, log)

	hoster := imagekit.NewUploader(cfg.ImageKitPrivateKey, cfg.ImageKitUploadURL, log)
	adapters := social.NewFactory(cfg, hoster, log)

	svc := campaign.NewService(contentGen, imageGen, adapters, campaignRepo, events.NewBus(log), log)
	ctx := context.Background()

	if *campaignID != "" {
		c, err := svc.PostAll(ctx, *campaignID)
		if err != nil {
			log.Fatal("posting failed", zap.Error(err))
		}
		printCampaign(c)
		return
	}

	if *appSlug == "" {
		fmt.Fprintln(os.Stderr, "usage: adgen -app <slug> [-platforms facebook,twitter] [-images] [-post]")
		fmt.Fprintln(os.Stderr, "       adgen -campaign <id>")
		os.Exit(2)
	}

	app, err := appRepo.Get(*appSlug)
	if err != nil {
		log.Fatal("unknown app profile", zap.String("slug", *appSlug), zap.Error(err))
	}

	var requested []string
	if *platforms != "" {
		requested = strings.Split(*platforms, ",")
	} else {
		for _, p := range models.AllPlatforms() {
			requested = append(requested, p.String())
		}
	}

	c, err := svc.Generate(ctx, *app, requested, *withImages)
	if err != nil {
		log.Fatal("generation failed", zap.Error(err))
	}

	if *post {
		if c, err = svc.PostAll(ctx, c.ID); err != nil {
			log.Fatal("posting failed", zap.Error(err))
		}
	}
	printCampaign(c)
}

func printCampaign(c *models.Campaign) {
	fmt.Printf("campaign %s\n", c.ID)
	for _, p := range c.Platforms() {
		ad := c.Ads[p]
		fmt.Printf("\n=== %s ===\n", p)
		fmt.Printf("headline:  %s\n", ad.Headline)
		fmt.Printf("body:      %s\n", ad.BodyText)
		fmt.Printf("hashtags:  %s\n", strings.Join(ad.Hashtags, " "))
		fmt.Printf("cta:       %s\n", ad.CallToAction)
		if ad.ImagePath != "" {
			fmt.Printf("image:     %s\n", ad.ImagePath)
		}
		if ad.PostingStatus != "" {
			fmt.Printf("status:    %s\n", ad.PostingStatus)
		}
		if ad.ErrorDetails != nil {
			fmt.Printf("error:     %s: %s\n", ad.ErrorDetails.Type, ad.ErrorDetails.Message)
		}
	}
}
