package controllers

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	fiberlog "github.com/gofiber/fiber/v2/log"

	"github.com/ManuelReschke/contapp-relay/internal/pkg/openai"
)

// ChatCompleter forwards a conversation to the model provider.
type ChatCompleter interface {
	Configured() bool
	Complete(ctx context.Context, in openai.CompletionRequest) (string, error)
}

type ChatController struct {
	chat    ChatCompleter
	timeout time.Duration
}

func NewChatController(chat ChatCompleter, timeout time.Duration) *ChatController {
	return &ChatController{chat: chat, timeout: timeout}
}

// HandleChat relays {messages, model?} and answers {reply}.
func (cc *ChatController) HandleChat(c *fiber.Ctx) error {
	if !cc.chat.Configured() {
		return errorJSON(c, fiber.StatusBadRequest, "Missing OPENAI_API_KEY")
	}

	var body struct {
		Messages json.RawMessage `json:"messages"`
		Model    json.RawMessage `json:"model"`
	}
	if err := json.Unmarshal(c.Body(), &body); err != nil {
		return errorJSON(c, fiber.StatusBadRequest, "Missing messages")
	}

	var messages []json.RawMessage
	if err := json.Unmarshal(body.Messages, &messages); err != nil || len(messages) == 0 {
		return errorJSON(c, fiber.StatusBadRequest, "Missing messages")
	}
	var model string
	if len(body.Model) > 0 && string(body.Model) != "null" {
		if err := json.Unmarshal(body.Model, &model); err != nil {
			return errorJSON(c, fiber.StatusBadRequest, "Invalid model")
		}
	}

	ctx, cancel := context.WithTimeout(c.UserContext(), cc.timeout)
	defer cancel()

	reply, err := cc.chat.Complete(ctx, openai.CompletionRequest{
		Model:    strings.TrimSpace(model),
		Messages: messages,
	})
	if err != nil {
		var apiErr *openai.APIError
		if errors.As(err, &apiErr) {
			return errorJSON(c, apiErr.StatusCode, apiErr.Message)
		}
		fiberlog.Errorf("chat completion failed: %v", err)
		return errorJSON(c, fiber.StatusInternalServerError, err.Error())
	}

	return c.JSON(fiber.Map{"reply": reply})
}
