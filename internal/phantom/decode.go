package phantom

import (
	"encoding/json"
	"errors"
	"strings"

	"prospector-engine/internal/domain"
)

// The agent API has shipped its launch and fetch-output responses in a few
// different envelopes over time. Each accepted shape is enumerated here as a
// named case and reduced to one canonical form; anything else is an explicit
// ErrUnrecognizedShape, never a silent empty.
var ErrUnrecognizedShape = errors.New("unrecognized agent response shape")

type launchEnvelope struct {
	ContainerID string `json:"containerId"`
	ID          string `json:"id"`
	Data        *struct {
		ContainerID string `json:"containerId"`
		ID          string `json:"id"`
	} `json:"data"`
	Container *struct {
		ID string `json:"id"`
	} `json:"container"`
}

// decodeLaunch extracts the container id from a launch response body.
func decodeLaunch(body []byte) (string, error) {
	var env launchEnvelope
	if err := json.Unmarshal(body, &env); err != nil {
		return "", err
	}
	switch {
	case env.ContainerID != "": // flat: {"containerId": ...}
		return env.ContainerID, nil
	case env.ID != "": // flat: {"id": ...}
		return env.ID, nil
	case env.Data != nil && env.Data.ContainerID != "":
		return env.Data.ContainerID, nil
	case env.Data != nil && env.Data.ID != "":
		return env.Data.ID, nil
	case env.Container != nil && env.Container.ID != "":
		return env.Container.ID, nil
	}
	return "", ErrUnrecognizedShape
}

type outputEnvelope struct {
	Status       string          `json:"status"`
	ResultObject json.RawMessage `json:"resultObject"`
	Output       json.RawMessage `json:"output"`
	Data         *struct {
		Status       string          `json:"status"`
		ResultObject json.RawMessage `json:"resultObject"`
		Output       json.RawMessage `json:"output"`
	} `json:"data"`
}

// decodeOutput extracts status and result payload from a fetch-output body.
// The payload comes back untouched; absence stays nil.
func decodeOutput(body []byte) (domain.Status, json.RawMessage, error) {
	var env outputEnvelope
	if err := json.Unmarshal(body, &env); err != nil {
		return domain.StatusError, nil, err
	}
	status, result := env.Status, env.ResultObject
	if result == nil {
		result = env.Output
	}
	if env.Data != nil {
		status = env.Data.Status
		result = env.Data.ResultObject
		if result == nil {
			result = env.Data.Output
		}
	}
	if status == "" {
		return domain.StatusError, nil, ErrUnrecognizedShape
	}
	return normalizeStatus(status), compactNull(result), nil
}

// normalizeStatus maps the agent's status vocabulary onto ours. Anything not
// recognizably terminal counts as still running.
func normalizeStatus(s string) domain.Status {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "finished", "succeeded", "success":
		return domain.StatusFinished
	case "aborted", "stopped":
		return domain.StatusAborted
	case "error", "launch error", "failed":
		return domain.StatusError
	default:
		return domain.StatusRunning
	}
}

func compactNull(raw json.RawMessage) json.RawMessage {
	if len(raw) == 0 || string(raw) == "null" {
		return nil
	}
	return raw
}
