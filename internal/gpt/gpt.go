package gpt

import (
	"context"
	"sync"

	"frailes/internal/copywriter"

	gpt "github.com/m-ariany/gpt-chat-client"
)

var (
	client *gpt.Client
	once   sync.Once
)

type ClientFactory interface {
	Client() (Client, error)
	ClientWithConfig(ClientConfig) (Client, error)
}

type factory struct {
}

func NewClientFactory(cnf ClientConfig) (ClientFactory, error) {
	var err error
	once.Do(func() {
		client, err = gpt.NewClient(cnf)
	})
	return &factory{}, err
}

func (g factory) Client() (Client, error) {
	return Client{Client: client.Clone()}, nil
}

func (g factory) ClientWithConfig(cnf ClientConfig) (Client, error) {
	return Client{Client: client.CloneWithConfig(cnf)}, nil
}

type Client struct {
	*gpt.Client
}

type ClientConfig = gpt.ClientConfig

// Generator drafts copy through the chat gateway. Every request runs on a
// fresh clone so instructions never leak between requests.
type Generator struct {
	factory ClientFactory
}

func NewGenerator(factory ClientFactory) *Generator {
	return &Generator{factory: factory}
}

func (g *Generator) Generate(ctx context.Context, req copywriter.Request) (string, error) {
	c, err := g.factory.Client()
	if err != nil {
		return "", err
	}

	c.Instruct(req.Instruction)
	return c.Prompt(ctx, req.Prompt)
}
