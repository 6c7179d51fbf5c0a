package nats

import (
	"github.com/nats-io/nats.go/micro"

	"github.com/flarexio/faqbot"
)

func AddEndpoints(group micro.Group, endpoints faqbot.EndpointSet) error {
	if err := group.AddEndpoint("query", QueryHandler(endpoints.Query)); err != nil {
		return err
	}

	if err := group.AddEndpoint("reindex", ReindexHandler(endpoints.Reindex)); err != nil {
		return err
	}

	return group.AddEndpoint("state", StateHandler(endpoints.State))
}
