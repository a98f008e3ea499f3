package service

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"backend/internal/model"
	"backend/internal/repository"
)

// VerificationProvider is the identity-verification vendor API surface used by
// the funnel: create a hosted session, then poll its status until terminal.
type VerificationProvider interface {
	CreateSession(ctx context.Context, reference string) (sessionID, hostedURL string, err error)
	SessionStatus(ctx context.Context, sessionID string) (string, error)
}

// httpVerificationProvider talks to the vendor's REST API.
type httpVerificationProvider struct {
	baseURL string
	apiKey  string
	client  *http.Client
}

// NewHTTPVerificationProvider builds the vendor client. An empty baseURL
// produces a provider that fails fast, which keeps local dev usable without
// vendor credentials.
func NewHTTPVerificationProvider(baseURL, apiKey string) VerificationProvider {
	return &httpVerificationProvider{
		baseURL: baseURL,
		apiKey:  apiKey,
		client:  &http.Client{Timeout: 10 * time.Second},
	}
}

func (p *httpVerificationProvider) CreateSession(ctx context.Context, reference string) (string, string, error) {
	if p.baseURL == "" {
		return "", "", errors.New("identity verification is not configured")
	}

	payload, _ := json.Marshal(map[string]string{"reference": reference})
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.baseURL+"/sessions", bytes.NewReader(payload))
	if err != nil {
		return "", "", err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+p.apiKey)

	res, err := p.client.Do(req)
	if err != nil {
		return "", "", fmt.Errorf("verification provider unreachable: %w", err)
	}
	defer res.Body.Close()

	if res.StatusCode != http.StatusOK && res.StatusCode != http.StatusCreated {
		return "", "", fmt.Errorf("verification provider returned status %d", res.StatusCode)
	}

	var body struct {
		ID  string `json:"id"`
		URL string `json:"url"`
	}
	if err := json.NewDecoder(res.Body).Decode(&body); err != nil {
		return "", "", fmt.Errorf("invalid provider response: %w", err)
	}
	return body.ID, body.URL, nil
}

func (p *httpVerificationProvider) SessionStatus(ctx context.Context, sessionID string) (string, error) {
	if p.baseURL == "" {
		return "", errors.New("identity verification is not configured")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.baseURL+"/sessions/"+sessionID, nil)
	if err != nil {
		return "", err
	}
	req.Header.Set("Authorization", "Bearer "+p.apiKey)

	res, err := p.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("verification provider unreachable: %w", err)
	}
	defer res.Body.Close()

	if res.StatusCode != http.StatusOK {
		return "", fmt.Errorf("verification provider returned status %d", res.StatusCode)
	}

	var body struct {
		Status string `json:"status"`
	}
	if err := json.NewDecoder(res.Body).Decode(&body); err != nil {
		return "", fmt.Errorf("invalid provider response: %w", err)
	}
	return body.Status, nil
}

// --- Service ---

type VerificationSessionResponse struct {
	SessionID string `json:"session_id"`
	URL       string `json:"url"` // hosted verification page, opened by the client
}

type VerificationStatusResponse struct {
	SessionID string `json:"session_id"`
	Status    string `json:"status"`
	Terminal  bool   `json:"terminal"`
	Verified  bool   `json:"verified"`
}

type VerificationService interface {
	CreateSession(ctx context.Context, submissionID string) (*VerificationSessionResponse, error)
	GetStatus(ctx context.Context, sessionID string) (*VerificationStatusResponse, error)
}

type verificationService struct {
	provider       VerificationProvider
	submissionRepo repository.SubmissionRepository
}

func NewVerificationService(provider VerificationProvider, submissionRepo repository.SubmissionRepository) VerificationService {
	return &verificationService{provider: provider, submissionRepo: submissionRepo}
}

func (s *verificationService) CreateSession(ctx context.Context, submissionID string) (*VerificationSessionResponse, error) {
	submission, err := s.submissionRepo.GetByID(ctx, submissionID)
	if err != nil {
		return nil, errors.New("submission not found")
	}

	// Reuse a live session rather than opening a second one
	if submission.VerificationSessionID != "" && !model.TerminalVerificationStatus(submission.VerificationStatus) {
		status, err := s.provider.SessionStatus(ctx, submission.VerificationSessionID)
		if err == nil && !model.TerminalVerificationStatus(status) {
			return &VerificationSessionResponse{
				SessionID: submission.VerificationSessionID,
				URL:       submission.VerificationURL,
			}, nil
		}
	}

	sessionID, hostedURL, err := s.provider.CreateSession(ctx, submission.ID.String())
	if err != nil {
		return nil, err
	}

	submission.VerificationSessionID = sessionID
	submission.VerificationURL = hostedURL
	submission.VerificationStatus = model.VerificationPending
	if err := s.submissionRepo.Update(ctx, submission); err != nil {
		return nil, err
	}

	return &VerificationSessionResponse{SessionID: sessionID, URL: hostedURL}, nil
}

// GetStatus proxies the provider and persists terminal outcomes onto the
// submission. The funnel polls this every few seconds; the server keeps no
// state between polls beyond the stored session id.
func (s *verificationService) GetStatus(ctx context.Context, sessionID string) (*VerificationStatusResponse, error) {
	submission, err := s.submissionRepo.GetBySessionID(ctx, sessionID)
	if err != nil {
		return nil, errors.New("verification session not found")
	}

	// Terminal results never change; skip the provider round trip.
	if model.TerminalVerificationStatus(submission.VerificationStatus) {
		return &VerificationStatusResponse{
			SessionID: sessionID,
			Status:    submission.VerificationStatus,
			Terminal:  true,
			Verified:  submission.OwnershipVerified,
		}, nil
	}

	status, err := s.provider.SessionStatus(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	if status != submission.VerificationStatus {
		submission.VerificationStatus = status
		if status == model.VerificationApproved {
			submission.OwnershipVerified = true
		}
		if err := s.submissionRepo.Update(ctx, submission); err != nil {
			return nil, err
		}
	}

	return &VerificationStatusResponse{
		SessionID: sessionID,
		Status:    status,
		Terminal:  model.TerminalVerificationStatus(status),
		Verified:  submission.OwnershipVerified,
	}, nil
}
