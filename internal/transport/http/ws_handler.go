package http

import (
	"errors"
	"log"
	"net/http"

	"qcm-service/internal/app"
	"qcm-service/internal/domain"
)

type outboundMessage[T any] struct {
	Type    string `json:"type"`
	Payload T      `json:"payload"`
}

type errorPayload struct {
	Message string `json:"message"`
}

type resultPayload struct {
	Record domain.ResultRecord `json:"record"`
	Tally  app.Tally           `json:"tally"`
}

// ServeFeed upgrades an unlocked admin session to a websocket that receives
// the current tally, then every newly saved record with the updated tally.
// The feed is subscribed before the report is read so no record falls between them.
func (h *Handler) ServeFeed(w http.ResponseWriter, r *http.Request) {
	updates, cancel := h.feed.Subscribe()
	defer cancel()

	id := sessionID(r)
	report, err := h.admin.Results(r.Context(), id)
	if err != nil {
		status := http.StatusBadGateway
		if errors.Is(err, domain.ErrLocked) {
			status = http.StatusUnauthorized
		}
		http.Error(w, err.Error(), status)
		return
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("ws upgrade failed: %v", err)
		return
	}
	defer conn.Close()

	// Records saved while the report was read arrive on updates too.
	counted := make(map[domain.ResultRecord]int, len(report.Records))
	for _, rec := range report.Records {
		counted[rec]++
	}

	send := make(chan outboundMessage[any], 16)
	closeSignals := make(chan struct{})
	writerDone := make(chan struct{})
	updatesDone := make(chan struct{})

	go func() {
		defer close(writerDone)
		for msg := range send {
			if err := conn.WriteJSON(msg); err != nil {
				log.Printf("ws write error: %v", err)
				return
			}
		}
	}()

	send <- outboundMessage[any]{Type: "tally", Payload: report.Tally}

	tally := report.Tally
	go func() {
		defer close(updatesDone)
		for {
			select {
			case rec, ok := <-updates:
				if !ok {
					return
				}
				if counted[rec] > 0 {
					counted[rec]--
					continue
				}
				tally.Add(rec)
				select {
				case send <- outboundMessage[any]{Type: "result", Payload: resultPayload{Record: rec, Tally: tally}}:
				case <-closeSignals:
					return
				}
			case <-closeSignals:
				return
			}
		}
	}()

	// The feed is server-to-client; inbound frames only detect disconnects.
	for {
		var inbound map[string]any
		if err := conn.ReadJSON(&inbound); err != nil {
			break
		}
		select {
		case send <- outboundMessage[any]{Type: "error", Payload: errorPayload{Message: "unsupported message type"}}:
		default:
		}
	}

	close(closeSignals)
	<-updatesDone
	close(send)
	<-writerDone
}
