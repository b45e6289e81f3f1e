package upload

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"time"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/option"
	"google.golang.org/api/youtube/v3"

	"mystery-shorts-pipeline/config"
)

// Publisher uploads the rendered video and posts the call-to-action
// comment on it.
type Publisher struct {
	cfg *config.Config
}

// New creates a new Publisher
func New(cfg *config.Config) *Publisher {
	return &Publisher{cfg: cfg}
}

// tokenJSON is the authorized-user credential supplied via the
// YOUTUBE_TOKEN environment variable.
type tokenJSON struct {
	ClientID     string `json:"client_id"`
	ClientSecret string `json:"client_secret"`
	RefreshToken string `json:"refresh_token"`
}

// Run uploads the video and then posts the comment. A missing or
// invalid credential fails the upload; a comment failure is logged and
// does not affect the reported upload success.
func (p *Publisher) Run(ctx context.Context, videoFile, title, topic, comment string) (string, error) {
	log.Println("[upload] 🚀 Uploading to YouTube...")

	svc, err := p.newService(ctx)
	if err != nil {
		return "", err
	}

	videoID, err := p.uploadVideo(svc, videoFile, title, topic)
	if err != nil {
		return "", fmt.Errorf("youtube upload: %w", err)
	}
	log.Printf("[upload] ✅ Upload complete! Video ID: %s", videoID)

	// Give the platform a moment to register the new video before
	// commenting on it.
	log.Println("[upload] ⏳ Waiting for API to register video...")
	time.Sleep(time.Duration(p.cfg.Upload.CommentDelaySec) * time.Second)

	if err := p.postComment(svc, videoID, comment); err != nil {
		log.Printf("[upload] Warning: failed to post comment: %v", err)
	} else {
		log.Println("[upload] ✅ Comment posted!")
	}

	return videoID, nil
}

func (p *Publisher) newService(ctx context.Context) (*youtube.Service, error) {
	raw := os.Getenv("YOUTUBE_TOKEN")
	if raw == "" {
		return nil, fmt.Errorf("YOUTUBE_TOKEN not set")
	}

	var tok tokenJSON
	if err := json.Unmarshal([]byte(raw), &tok); err != nil {
		return nil, fmt.Errorf("parse YOUTUBE_TOKEN: %w", err)
	}
	if tok.ClientID == "" || tok.ClientSecret == "" || tok.RefreshToken == "" {
		return nil, fmt.Errorf("YOUTUBE_TOKEN missing client_id, client_secret, or refresh_token")
	}

	conf := &oauth2.Config{
		ClientID:     tok.ClientID,
		ClientSecret: tok.ClientSecret,
		Endpoint:     google.Endpoint,
		Scopes:       []string{youtube.YoutubeUploadScope, youtube.YoutubeForceSslScope},
	}
	source := conf.TokenSource(ctx, &oauth2.Token{
		RefreshToken: tok.RefreshToken,
		Expiry:       time.Now().Add(-time.Hour), // force refresh
	})

	svc, err := youtube.NewService(ctx, option.WithTokenSource(source))
	if err != nil {
		return nil, fmt.Errorf("youtube service: %w", err)
	}
	return svc, nil
}

func (p *Publisher) uploadVideo(svc *youtube.Service, videoFile, title, topic string) (string, error) {
	f, err := os.Open(videoFile)
	if err != nil {
		return "", fmt.Errorf("open video file: %w", err)
	}
	defer f.Close()

	video := &youtube.Video{
		Snippet: &youtube.VideoSnippet{
			Title:       title + " #Shorts",
			Description: BuildDescription(topic),
			Tags:        p.cfg.Upload.Tags,
			CategoryId:  p.cfg.Upload.CategoryID,
		},
		Status: &youtube.VideoStatus{
			PrivacyStatus:           p.cfg.Upload.Visibility,
			SelfDeclaredMadeForKids: false,
		},
	}

	call := svc.Videos.Insert([]string{"snippet", "status"}, video)
	call.Media(f)

	uploaded, err := call.Do()
	if err != nil {
		return "", err
	}
	return uploaded.Id, nil
}

func (p *Publisher) postComment(svc *youtube.Service, videoID, text string) error {
	log.Printf("[upload] 💬 Posting comment: %s", text)

	thread := &youtube.CommentThread{
		Snippet: &youtube.CommentThreadSnippet{
			VideoId: videoID,
			TopLevelComment: &youtube.Comment{
				Snippet: &youtube.CommentSnippet{
					TextOriginal: text,
				},
			},
		},
	}

	_, err := svc.CommentThreads.Insert([]string{"snippet"}, thread).Do()
	return err
}

// BuildDescription renders the fixed channel description around the
// topic.
func BuildDescription(topic string) string {
	return fmt.Sprintf("The truth about %s.\n\n"+
		"Echoes of Reality explores the glitches in our world, the paradoxes that break logic, "+
		"and the dark corners of history.\n\n"+
		"👁️ Subscribe to the Archive: https://youtube.com/@EchoesOfRealityShorts?sub_confirmation=1\n\n"+
		"Questions asked in this video:\n"+
		"• Is this real?\n"+
		"• What are they hiding?\n\n"+
		"📝 Note: This content is created with the assistance of AI for educational and storytelling purposes.\n"+
		"#shorts #mystery #documentary #scifi #paradox", topic)
}

// LogUpload saves the publish result to the logs directory.
func LogUpload(videoID, title, videoFile, logsDir string) error {
	if err := os.MkdirAll(logsDir, 0755); err != nil {
		return err
	}

	entry := map[string]interface{}{
		"video_id":    videoID,
		"video_url":   fmt.Sprintf("https://www.youtube.com/watch?v=%s", videoID),
		"title":       title,
		"video_file":  videoFile,
		"uploaded_at": time.Now().UTC().Format(time.RFC3339),
	}

	logFile := fmt.Sprintf("%s/upload_%s.json", logsDir, time.Now().Format("20060102_150405"))
	data, _ := json.MarshalIndent(entry, "", "  ")
	if err := os.WriteFile(logFile, data, 0644); err != nil {
		return err
	}

	log.Printf("[upload] Upload log saved: %s", logFile)
	return nil
}
