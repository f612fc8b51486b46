package sms

import "context"

type Provider interface {
	Send(ctx context.Context, phone string, text string) error
}

type NoOpProvider struct{}

func (p *NoOpProvider) Send(ctx context.Context, phone string, text string) error {
	return nil
}
