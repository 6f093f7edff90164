// Package jobs drives a signed workitem through the remote execution
// service: one submit message over a duplex channel, then a status stream
// consumed until a terminal state.
package jobs

import (
	"context"
	"encoding/json"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"

	"github.com/plotline/plotline/internal/domain"
)

const submitAction = "post-workitem"

// Submitter submits job descriptors over a persistent websocket channel.
type Submitter struct {
	endpoint string
	dialer   *websocket.Dialer
}

func NewSubmitter(endpoint string) *Submitter {
	return &Submitter{
		endpoint: endpoint,
		dialer:   websocket.DefaultDialer,
	}
}

type outboundEnvelope struct {
	Action  string               `json:"action"`
	Data    domain.JobDescriptor `json:"data"`
	Headers map[string]string    `json:"headers"`
}

type inboundEnvelope struct {
	Action string          `json:"action"`
	Data   json.RawMessage `json:"data"`
}

// Submit opens the channel, sends exactly one submit message and consumes
// status events until a terminal one. It returns the terminal event; a
// terminal state other than success is returned as *domain.JobFailure. The
// closing handshake is attempted on every exit path.
func (s *Submitter) Submit(ctx context.Context, descriptor domain.JobDescriptor, authorization string) (domain.JobStatusEvent, error) {
	payload, err := json.Marshal(outboundEnvelope{
		Action:  submitAction,
		Data:    descriptor,
		Headers: map[string]string{"Authorization": authorization},
	})
	if err != nil {
		return domain.JobStatusEvent{}, &domain.ProtocolError{Reason: "encode submit message: " + err.Error()}
	}

	conn, resp, err := s.dialer.DialContext(ctx, s.endpoint, nil)
	if err != nil {
		return domain.JobStatusEvent{}, &domain.ProtocolError{Reason: "dial " + s.endpoint + ": " + err.Error()}
	}
	if resp != nil && resp.Body != nil {
		resp.Body.Close()
	}

	defer func() {
		deadline := time.Now().Add(time.Second)
		conn.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""), deadline)
		conn.Close()
	}()

	log.Info().RawJSON("payload", payload).Msg("Submitting workitem")

	if err := conn.WriteMessage(websocket.TextMessage, payload); err != nil {
		return domain.JobStatusEvent{}, &domain.ProtocolError{Reason: "send submit message: " + err.Error()}
	}

	return s.receive(conn)
}

// receive is the status loop. It stops at the first terminal event observed;
// duplicate terminal events are absorbed by never reading past the first.
func (s *Submitter) receive(conn *websocket.Conn) (domain.JobStatusEvent, error) {
	for {
		messageType, data, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				// the library echoes the close frame before surfacing the error
				return domain.JobStatusEvent{}, &domain.ProtocolError{Reason: "channel closed before terminal status"}
			}
			return domain.JobStatusEvent{}, &domain.ProtocolError{Reason: "read status frame: " + err.Error()}
		}

		if messageType != websocket.TextMessage {
			continue
		}

		var envelope inboundEnvelope
		if err := json.Unmarshal(data, &envelope); err != nil {
			return domain.JobStatusEvent{}, &domain.ProtocolError{Reason: "malformed frame: " + err.Error()}
		}

		switch envelope.Action {
		case "error":
			return domain.JobStatusEvent{}, &domain.ProtocolError{Reason: "remote error: " + string(envelope.Data)}

		case "status":
			var event domain.JobStatusEvent
			if err := json.Unmarshal(envelope.Data, &event); err != nil {
				return domain.JobStatusEvent{}, &domain.ProtocolError{Reason: "malformed status event: " + err.Error()}
			}

			if !event.Status.Known() {
				log.Warn().
					Str("status", string(event.Status)).
					Str("job_id", event.ID).
					Msg("Unknown job status, treating as non-terminal")
				continue
			}

			log.Info().
				Str("status", string(event.Status)).
				Str("job_id", event.ID).
				Msg("Job status")

			if !event.Status.Terminal() {
				continue
			}

			if event.Status != domain.JobStatusSuccess {
				return event, &domain.JobFailure{Status: event.Status, ReportURL: event.ReportURL}
			}
			return event, nil

		default:
			return domain.JobStatusEvent{}, &domain.ProtocolError{Reason: "unexpected message kind: " + envelope.Action}
		}
	}
}
