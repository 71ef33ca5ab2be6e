package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/shortsforge/automation-engine/internal/ai"
	"github.com/shortsforge/automation-engine/internal/config"
	"github.com/shortsforge/automation-engine/internal/media"
	"github.com/shortsforge/automation-engine/internal/stats"
	"github.com/shortsforge/automation-engine/internal/youtube"
)

func main() {
	fmt.Println("🔍 Shorts Automation Engine - API Connectivity Test")
	fmt.Println("==================================================")

	// Load environment variables
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using system environment variables")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	fmt.Println("\n📡 Testing external services...")
	fmt.Println(strings.Repeat("-", 40))

	testGemini(ctx, cfg)
	testYouTube(ctx, cfg)
	testEncoder()

	fmt.Println("\n✅ API connectivity test completed!")
	fmt.Println("\n💡 Next steps:")
	fmt.Println("   • Configure missing keys in .env file")
	fmt.Println("   • Run the engine with: go run ./cmd/engine")
}

func testGemini(ctx context.Context, cfg *config.Config) {
	fmt.Printf("🔸 Testing Gemini (%s)... ", cfg.ContentModel)

	service := ai.NewService(ai.NewGeminiGenerator(cfg.GeminiAPIKey, cfg.ContentModel, cfg.ImageModel))
	ideas, err := service.GenerateStrategy(ctx, cfg.DefaultTopic)
	if errors.Is(err, ai.ErrNotConfigured) {
		fmt.Printf("⚠️  DISABLED (missing API key)\n")
		return
	}
	if err != nil {
		fmt.Printf("❌ ERROR: %v\n", err)
		return
	}

	fmt.Printf("✅ SUCCESS (%d ideas)\n", len(ideas))
	fmt.Printf("   📝 Sample: %q\n", ideas[0].Title)
}

func testYouTube(ctx context.Context, cfg *config.Config) {
	fmt.Printf("🔸 Testing YouTube Data API... ")

	tokens := youtube.NewTokenStore(cfg.GoogleClientID, cfg.GoogleClientSecret, cfg.TokenFile)
	token, err := tokens.AccessToken(ctx)
	if errors.Is(err, youtube.ErrNoStoredToken) {
		fmt.Printf("⚠️  DISABLED (no token file at %s)\n", cfg.TokenFile)
		return
	}
	if err != nil {
		fmt.Printf("❌ ERROR: %v\n", err)
		return
	}

	client := youtube.NewClient(cfg.YouTubeAPIBaseURL, cfg.YouTubeUploadBaseURL)
	profile, err := client.FetchProfile(ctx, token)
	if err != nil {
		fmt.Printf("❌ ERROR: %v\n", err)
		return
	}
	fmt.Printf("✅ SUCCESS (channel %q)\n", profile.Name)

	result, err := stats.NewAggregator(client).Collect(ctx, token)
	if err != nil {
		fmt.Printf("   ❌ Stats: %v\n", err)
		return
	}
	if result != nil {
		fmt.Printf("   📈 %d videos, %d views, %d likes\n", result.VideoCount, result.TotalViews, result.TotalLikes)
	}
}

func testEncoder() {
	fmt.Printf("🔸 Testing video encoder... ")

	mimeType := media.SelectMIMEType(media.NewFFmpegEncoder(""))
	if mimeType == "" {
		fmt.Printf("❌ ERROR: %v\n", media.ErrUnsupportedEnvironment)
		return
	}
	fmt.Printf("✅ SUCCESS (%s)\n", mimeType)
}
