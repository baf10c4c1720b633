package counsel

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"

	"github.com/cloudwego/eino/schema"

	"github.com/maumlab/counselbot/backend/internal/analysis/risk"
	"github.com/maumlab/counselbot/backend/internal/model/chat"
	"github.com/maumlab/counselbot/backend/internal/model/persona"
	chatservice "github.com/maumlab/counselbot/backend/internal/service/chat"
)

// ReplyStreamer is the completion-client surface the controller drives.
// Implemented by the ai service; faked in tests.
type ReplyStreamer interface {
	StreamingEnabled() bool
	GenerateReply(ctx context.Context, p persona.Persona, history []chat.Turn, userText string, riskDetected bool) (*schema.Message, error)
	StreamReply(ctx context.Context, p persona.Persona, history []chat.Turn, userText string, riskDetected bool) (*schema.StreamReader[*schema.Message], error)
}

// Controller runs one request/response cycle per Submit call: risk scan,
// prompt composition, model call, transcript commit. One cycle at a time per
// session.
type Controller struct {
	chatSvc  *chatservice.Service
	personas persona.Store
	streamer ReplyStreamer
}

// New wires the controller to its collaborators.
func New(chatSvc *chatservice.Service, personas persona.Store, streamer ReplyStreamer) *Controller {
	return &Controller{
		chatSvc:  chatSvc,
		personas: personas,
		streamer: streamer,
	}
}

// Submit relays one user message. Every fragment of the reply is handed to
// onFragment before the next one is requested, so callers can render
// incrementally. The user and assistant turns are committed together only
// after the reply fully arrived: if the model call fails mid-stream the
// transcript is left exactly as it was, and already-rendered fragments are a
// display-only artifact.
func (c *Controller) Submit(ctx context.Context, sessionID, userText string, onFragment func(string)) (chat.Turn, error) {
	session, err := c.chatSvc.GetSession(ctx, sessionID)
	if err != nil {
		return chat.Turn{}, err
	}

	p, ok := c.personas.FindByID(session.PersonaID)
	if !ok {
		return chat.Turn{}, fmt.Errorf("persona %s not found", session.PersonaID)
	}

	if err := c.chatSvc.BeginTurn(ctx, sessionID); err != nil {
		return chat.Turn{}, err
	}
	defer c.chatSvc.EndTurn(ctx, sessionID)

	// The sticky flag records that risk was ever seen; the prompt directive
	// is driven by the current message only.
	riskNow := risk.Detect(userText)
	if err := c.chatSvc.MarkRisk(ctx, sessionID, riskNow); err != nil {
		return chat.Turn{}, err
	}
	if riskNow {
		log.Printf("[counsel] risk signal detected session=%s", sessionID)
	}

	history, err := c.chatSvc.Transcript(ctx, sessionID, 0)
	if err != nil {
		return chat.Turn{}, err
	}

	reply, err := c.fetchReply(ctx, p, history, userText, riskNow, onFragment)
	if err != nil {
		return chat.Turn{}, err
	}

	assistantTurn, err := c.chatSvc.CommitExchange(ctx, sessionID, userText, reply.Content)
	if err != nil {
		return chat.Turn{}, err
	}

	log.Printf("[counsel] completed turn session=%s length=%d", sessionID, len(reply.Content))
	return assistantTurn, nil
}

func (c *Controller) fetchReply(ctx context.Context, p persona.Persona, history []chat.Turn, userText string, riskNow bool, onFragment func(string)) (*schema.Message, error) {
	if !c.streamer.StreamingEnabled() {
		reply, err := c.streamer.GenerateReply(ctx, p, history, userText, riskNow)
		if err != nil {
			return nil, err
		}
		if onFragment != nil && reply.Content != "" {
			onFragment(reply.Content)
		}
		return reply, nil
	}

	stream, err := c.streamer.StreamReply(ctx, p, history, userText, riskNow)
	if err != nil {
		return nil, err
	}
	defer stream.Close()

	chunks := make([]*schema.Message, 0, 8)
	for {
		chunk, recvErr := stream.Recv()
		if errors.Is(recvErr, io.EOF) {
			break
		}
		if recvErr != nil {
			return nil, recvErr
		}
		if chunk == nil {
			continue
		}

		chunks = append(chunks, chunk)
		if onFragment != nil && chunk.Content != "" {
			onFragment(chunk.Content)
		}
	}

	return schema.ConcatMessages(chunks)
}
