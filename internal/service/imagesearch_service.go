package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"time"
)

const customSearchEndpoint = "https://www.googleapis.com/customsearch/v1"

// VehicleImage is one image result shown next to a vehicle record.
type VehicleImage struct {
	URL       string `json:"url"`
	Thumbnail string `json:"thumbnail"`
	Title     string `json:"title"`
}

// ImageSearchService looks up vehicle photos via Google Custom Search.
type ImageSearchService interface {
	Search(ctx context.Context, query string) ([]VehicleImage, error)
	Configured() bool
}

type imageSearchService struct {
	apiKey   string
	engineID string
	client   *http.Client
}

func NewImageSearchService(apiKey, engineID string) ImageSearchService {
	return &imageSearchService{
		apiKey:   apiKey,
		engineID: engineID,
		client:   &http.Client{Timeout: 10 * time.Second},
	}
}

func (s *imageSearchService) Configured() bool {
	return s.apiKey != "" && s.engineID != ""
}

func (s *imageSearchService) Search(ctx context.Context, query string) ([]VehicleImage, error) {
	if !s.Configured() {
		return nil, errors.New("image search is not configured")
	}

	params := url.Values{}
	params.Set("key", s.apiKey)
	params.Set("cx", s.engineID)
	params.Set("q", query)
	params.Set("searchType", "image")
	params.Set("num", "5")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, customSearchEndpoint+"?"+params.Encode(), nil)
	if err != nil {
		return nil, err
	}

	res, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("image search unreachable: %w", err)
	}
	defer res.Body.Close()

	if res.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("image search returned status %d", res.StatusCode)
	}

	var body struct {
		Items []struct {
			Link  string `json:"link"`
			Title string `json:"title"`
			Image struct {
				ThumbnailLink string `json:"thumbnailLink"`
			} `json:"image"`
		} `json:"items"`
	}
	if err := json.NewDecoder(res.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("invalid search response: %w", err)
	}

	images := make([]VehicleImage, 0, len(body.Items))
	for _, item := range body.Items {
		images = append(images, VehicleImage{
			URL:       item.Link,
			Thumbnail: item.Image.ThumbnailLink,
			Title:     item.Title,
		})
	}
	return images, nil
}
