package suno

import (
	"encoding/json"
	"strings"

	"songforge/internal/core/domain"
)

// Remote status values documented for the generation endpoints.
const (
	statusPending         = "PENDING"
	statusTextSuccess     = "TEXT_SUCCESS"
	statusFirstSuccess    = "FIRST_SUCCESS"
	statusSuccess         = "SUCCESS"
	statusCreateFailed    = "CREATE_TASK_FAILED"
	statusGenerateFailed  = "GENERATE_AUDIO_FAILED"
	statusCallbackError   = "CALLBACK_EXCEPTION"
	statusSensitiveWord   = "SENSITIVE_WORD_ERROR"
	statusVideoComplete   = "complete"
	statusVideoFailedLow  = "failed"
	statusVideoFailedHigh = "FAILED"
	statusVideoError      = "ERROR"
)

// normalizeStatus folds the remote status vocabulary into the three-valued
// domain status. Unrecognized values map to pending on purpose: a few
// wasted polls cost less than exiting early on a status string the API
// grew since this table was written. The caller logs the raw value.
func normalizeStatus(raw string) (domain.Status, bool) {
	switch raw {
	case statusSuccess, statusFirstSuccess, statusVideoComplete:
		return domain.StatusSucceeded, true
	case statusCreateFailed, statusGenerateFailed, statusCallbackError, statusSensitiveWord,
		statusVideoFailedLow, statusVideoFailedHigh, statusVideoError:
		return domain.StatusFailed, true
	case statusPending, statusTextSuccess, "":
		return domain.StatusPending, true
	default:
		return domain.StatusPending, false
	}
}

// audioRecord is the payload of /generate/record-info.
type audioRecord struct {
	TaskID   string `json:"taskId"`
	Status   string `json:"status"`
	Response struct {
		SunoData []audioClip `json:"sunoData"`
	} `json:"response"`
	ErrorMessage string `json:"errorMessage"`
}

type audioClip struct {
	ID             string `json:"id"`
	AudioURL       string `json:"audioUrl"`
	SourceAudioURL string `json:"sourceAudioUrl"`
	StreamAudioURL string `json:"streamAudioUrl"`
}

func (c *Client) decodeAudioRecord(taskID string, data json.RawMessage) (*domain.StatusResult, error) {
	var rec audioRecord
	if err := json.Unmarshal(data, &rec); err != nil {
		return nil, &domain.TransientQueryError{TaskID: taskID, Err: err}
	}

	status, known := normalizeStatus(rec.Status)
	if !known {
		c.logger.Warn().Str("task_id", taskID).Str("status", rec.Status).
			Msg("unrecognized task status, treating as pending")
	}

	result := &domain.StatusResult{Status: status, ErrorDetail: rec.ErrorMessage}
	if status == domain.StatusSucceeded {
		if clip, ok := firstClip(rec.Response.SunoData); ok {
			result.ResultURL = clip.url()
			result.AudioID = clip.ID
		}
		if result.ResultURL == "" {
			// Succeeded without a payload is useless to the caller.
			result.Status = domain.StatusFailed
			result.ErrorDetail = "task succeeded but response carries no audio url"
		}
	}
	return result, nil
}

func firstClip(clips []audioClip) (audioClip, bool) {
	for _, clip := range clips {
		if clip.url() != "" {
			return clip, true
		}
	}
	return audioClip{}, false
}

func (c audioClip) url() string {
	for _, u := range []string{c.AudioURL, c.SourceAudioURL, c.StreamAudioURL} {
		if u != "" {
			return u
		}
	}
	return ""
}

// videoRecord is the payload of /mp4/record-info. Field names have varied
// across API revisions, so several candidates are decoded.
type videoRecord struct {
	TaskID       string `json:"taskId"`
	MusicID      string `json:"musicId"`
	Status       string `json:"status"`
	CompleteTime string `json:"completeTime"`
	VideoURL     string `json:"videoUrl"`
	VideoPath    string `json:"videoPath"`
	MP4URL       string `json:"mp4Url"`
	ErrorReason  string `json:"errorReason"`
	ErrorMessage string `json:"errorMessage"`
}

func (c *Client) decodeVideoRecord(taskID string, data json.RawMessage) (*domain.StatusResult, error) {
	var rec videoRecord
	if err := json.Unmarshal(data, &rec); err != nil {
		return nil, &domain.TransientQueryError{TaskID: taskID, Err: err}
	}

	raw := rec.Status
	if raw == "" && rec.CompleteTime != "" {
		// Some revisions omit status once the render is done.
		raw = statusVideoComplete
	}

	status, known := normalizeStatus(raw)
	if !known {
		c.logger.Warn().Str("task_id", taskID).Str("status", raw).
			Msg("unrecognized task status, treating as pending")
	}

	detail := rec.ErrorReason
	if detail == "" {
		detail = rec.ErrorMessage
	}

	result := &domain.StatusResult{Status: status, ErrorDetail: detail}
	if status == domain.StatusSucceeded {
		result.ResultURL = c.resolveFileURL(rec.videoURL())
		if result.ResultURL == "" {
			result.Status = domain.StatusFailed
			result.ErrorDetail = "render complete but response carries no video url"
		}
	}
	return result, nil
}

func (r videoRecord) videoURL() string {
	for _, u := range []string{r.VideoURL, r.MP4URL, r.VideoPath} {
		if u != "" {
			return u
		}
	}
	return ""
}

// resolveFileURL turns a bare artifact path into a full URL against the
// configured file host.
func (c *Client) resolveFileURL(u string) string {
	if u == "" || strings.HasPrefix(u, "http://") || strings.HasPrefix(u, "https://") {
		return u
	}
	return c.fileHost + "/" + strings.TrimPrefix(u, "/")
}
