package server

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"strings"
	"time"
)

// Generator produces a meme image for one submission: the target player's
// face swapped into the template, captioned. A returned error resolves the
// submission with the failure sentinel, never fails the room.
type Generator interface {
	Generate(ctx context.Context, templateURL, sourceURL, caption string) (string, error)
}

type workerClient struct {
	baseURL string
	client  *http.Client
}

func newWorkerClient(baseURL string, timeout time.Duration) *workerClient {
	return &workerClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  &http.Client{Timeout: timeout},
	}
}

type workerRequest struct {
	TemplateURL string `json:"template_url"`
	SourceURL   string `json:"source_url"`
	Caption     string `json:"caption"`
}

type workerResponse struct {
	ImageURL string `json:"image_url"`
	Error    string `json:"error,omitempty"`
}

func (w *workerClient) Generate(ctx context.Context, templateURL, sourceURL, caption string) (string, error) {
	if w.baseURL == "" {
		return "", errors.New("worker URL is not configured")
	}
	payload, err := json.Marshal(workerRequest{
		TemplateURL: templateURL,
		SourceURL:   sourceURL,
		Caption:     caption,
	})
	if err != nil {
		return "", fmt.Errorf("failed to build worker request")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, w.baseURL+"/generate", bytes.NewReader(payload))
	if err != nil {
		return "", fmt.Errorf("failed to build worker request")
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := w.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to reach worker")
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read worker response")
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", fmt.Errorf("worker request failed (%d)", resp.StatusCode)
	}

	var parsed workerResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return "", fmt.Errorf("failed to parse worker response")
	}
	if parsed.Error != "" {
		return "", fmt.Errorf("worker error: %s", parsed.Error)
	}
	if parsed.ImageURL == "" {
		return "", errors.New("worker returned no image")
	}
	return parsed.ImageURL, nil
}

type generationJob struct {
	creatorID   string
	templateURL string
	sourceURL   string
	caption     string
}

// generationJobs snapshots the work for the active round. The target's
// avatar was captured on the submission at accept time, so a target who
// has since disconnected still gets their face swapped in.
func generationJobs(room *Room) []generationJob {
	subs := room.currentSubmissions()
	jobs := make([]generationJob, 0, len(subs))
	for i := range subs {
		template, _ := templateByID(subs[i].TemplateID)
		jobs = append(jobs, generationJob{
			creatorID:   subs[i].CreatorID,
			templateURL: template.URL,
			sourceURL:   subs[i].TargetAvatarURL,
			caption:     subs[i].Caption,
		})
	}
	return jobs
}

// runGeneration dispatches every submission to the worker in parallel.
// Each call carries its own timeout; a slow or failing call resolves its
// submission with the failure sentinel and never holds up the others. The
// last resolution advances the room to VOTING.
func (s *Server) runGeneration(code string, round int, jobs []generationJob) {
	if len(jobs) == 0 {
		s.finishProcessing(code, round)
		return
	}
	timeout := time.Duration(s.cfg.GenerationSeconds) * time.Second
	for _, job := range jobs {
		go func(job generationJob) {
			ctx, cancel := context.WithTimeout(context.Background(), timeout)
			defer cancel()
			imageURL, err := s.generator.Generate(ctx, job.templateURL, job.sourceURL, job.caption)
			s.resolveGeneration(code, round, job.creatorID, imageURL, err)
		}(job)
	}
}

func (s *Server) resolveGeneration(code string, round int, creatorID, imageURL string, genErr error) {
	done := false
	err := s.updateRoom(code, func(room *Room) error {
		if room.Status != statusProcessing || room.Round != round {
			return nil
		}
		sub, ok := room.submissionBy(creatorID)
		if !ok || sub.Resolved {
			return nil
		}
		sub.Resolved = true
		if genErr != nil {
			sub.Failed = true
			log.Printf("generation failed room=%s round=%d creator=%s error=%v", code, round, creatorID, genErr)
		} else {
			sub.ImageURL = imageURL
		}
		done = generationResolved(room)
		return nil
	})
	if err != nil {
		return
	}
	if done {
		s.finishProcessing(code, round)
	}
}

// finishProcessing opens voting once the barrier has resolved. Voting may
// close immediately when the round has nothing to vote on.
func (s *Server) finishProcessing(code string, round int) {
	var (
		snap   map[string]any
		closed bool
	)
	err := s.updateRoom(code, func(room *Room) error {
		if room.Status != statusProcessing || room.Round != round {
			return errWrongStatus
		}
		room.Status = statusVoting
		closed = votingComplete(room)
		snap = buildSnapshot(room)
		return nil
	})
	if err != nil {
		return
	}
	log.Printf("voting opened room=%s round=%d", code, round)
	s.hub.Broadcast(code, serverEvent{evtVoteStart, map[string]any{}})
	s.hub.Broadcast(code, serverEvent{evtRoomUpdate, snap})
	if closed {
		s.closeRound(code, round, "no votes required")
		return
	}
	s.scheduleRoomTimer(code, statusVoting, round)
}
