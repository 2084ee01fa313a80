package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/ryliegao/ricebook-client/internal/client/models"
	"github.com/ryliegao/ricebook-client/internal/client/services"
)

// Feed refreshes the article list from the server and prints it, newest
// first.
func (a *App) Feed(ctx context.Context) error {
	posts := a.feed.LoadPosts(ctx)
	if len(posts) == 0 {
		printlnFn("No posts in your feed.")
		return nil
	}
	printPosts(posts)
	return nil
}

// Search filters the held articles locally by a case-insensitive
// substring match over the post body. The server is only contacted when
// nothing has been loaded yet.
func (a *App) Search(ctx context.Context, query string) error {
	posts := a.feed.Posts()
	if len(posts) == 0 {
		posts = a.feed.LoadPosts(ctx)
	}
	matched := services.FilterLocally(posts, query)
	if len(matched) == 0 {
		printlnFn("No posts match.")
		return nil
	}
	printPosts(matched)
	return nil
}

// Post collects a new article body (and optionally an image to attach)
// and submits it. The refreshed feed is printed on success.
func (a *App) Post(ctx context.Context) error {
	text, err := GetMultiline(a.reader, "Enter post text", os.Stdout)
	if err != nil {
		return err
	}
	if text == "" {
		printlnFn("Nothing to post.")
		return nil
	}

	imagePath, err := getSimpleText(a.reader, "Attach image (path, empty for none)", os.Stdout)
	if err != nil {
		return err
	}

	var imageURL string
	if imagePath != "" {
		data, err := os.ReadFile(imagePath)
		if err != nil {
			printlnFn("Cannot read image:", err)
			return err
		}
		imageURL = a.feed.UploadImage(ctx, filepath.Base(imagePath), data)
		if imageURL == "" {
			printlnFn("Image upload failed; posting without it.")
		}
	}

	posts := a.feed.SubmitPost(ctx, text, imageURL)
	printlnFn("Posted.")
	printPosts(posts)
	return nil
}

// Comments prints the comments of one article.
func (a *App) Comments(ctx context.Context, id string) error {
	postID, err := strconv.ParseInt(id, 10, 64)
	if err != nil {
		printlnFn("Post id must be a number.")
		return nil
	}

	comments := a.feed.LoadComments(ctx, postID)
	if len(comments) == 0 {
		printlnFn("No comments.")
		return nil
	}
	for _, c := range comments {
		printlnFn(fmt.Sprintf("  %s: %s", c.Commenter, c.Content))
	}
	return nil
}

// Upload sends a local file to the image service and prints the
// resulting URL.
func (a *App) Upload(ctx context.Context, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		printlnFn("Cannot read file:", err)
		return err
	}

	url := a.feed.UploadImage(ctx, filepath.Base(path), data)
	if url == "" {
		printlnFn("Upload failed.")
		return nil
	}
	printlnFn("Uploaded:", url)
	return nil
}

func printPosts(posts []models.Post) {
	for _, p := range posts {
		printlnFn(fmt.Sprintf("[%d] %s (%s)", p.ID, p.Author, p.Date))
		printlnFn("  " + p.Content)
		if p.Image != "" {
			printlnFn("  image: " + p.Image)
		}
	}
}
