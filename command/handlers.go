package command

import (
	"context"

	gocmd "github.com/goliatone/go-command"
	"github.com/goliatone/go-enigma/core"
)

type VerifyService interface {
	Verify(ctx context.Context, req core.VerifyRequest) (core.VerifyResult, error)
}

type AdminService interface {
	CreateEnigma(ctx context.Context, in core.CreateEnigmaInput) (core.Enigma, error)
	DeleteEnigma(ctx context.Context, id string) error
}

type VerifyEnigmaCommand struct {
	service VerifyService
}

func NewVerifyEnigmaCommand(service VerifyService) *VerifyEnigmaCommand {
	return &VerifyEnigmaCommand{service: service}
}

func (c *VerifyEnigmaCommand) Execute(ctx context.Context, msg VerifyEnigmaMessage) error {
	if c == nil || c.service == nil {
		return commandDependencyError("command: verify service is required")
	}
	out, err := c.service.Verify(ctx, msg.Request)
	if err != nil {
		return err
	}
	storeResult(ctx, out)
	return nil
}

type CreateEnigmaCommand struct {
	service AdminService
}

func NewCreateEnigmaCommand(service AdminService) *CreateEnigmaCommand {
	return &CreateEnigmaCommand{service: service}
}

func (c *CreateEnigmaCommand) Execute(ctx context.Context, msg CreateEnigmaMessage) error {
	if c == nil || c.service == nil {
		return commandDependencyError("command: create enigma service is required")
	}
	if err := msg.Validate(); err != nil {
		return err
	}
	out, err := c.service.CreateEnigma(ctx, msg.Input)
	if err != nil {
		return err
	}
	storeResult(ctx, out)
	return nil
}

type DeleteEnigmaCommand struct {
	service AdminService
}

func NewDeleteEnigmaCommand(service AdminService) *DeleteEnigmaCommand {
	return &DeleteEnigmaCommand{service: service}
}

func (c *DeleteEnigmaCommand) Execute(ctx context.Context, msg DeleteEnigmaMessage) error {
	if c == nil || c.service == nil {
		return commandDependencyError("command: delete enigma service is required")
	}
	if err := msg.Validate(); err != nil {
		return err
	}
	return c.service.DeleteEnigma(ctx, msg.ID)
}

func storeResult[T any](ctx context.Context, value T) {
	collector := gocmd.ResultFromContext[T](ctx)
	if collector == nil {
		return
	}
	collector.Store(value)
}
