package main

import (
	"log"

	"github.com/matst80/slask-facets/pkg/messaging"
	"github.com/matst80/slask-facets/pkg/types"
	amqp "github.com/rabbitmq/amqp091-go"
)

func (a *app) ConnectAmqp(amqpUrl string) error {
	conn, err := amqp.DialConfig(amqpUrl, amqp.Config{
		Properties: amqp.NewConnectionProperties(),
	})
	if err != nil {
		return err
	}
	a.conn = conn

	upserts, err := conn.Channel()
	if err != nil {
		return err
	}
	err = messaging.Listen(upserts, country, messaging.ProductsUpserted, func(items []types.Product) error {
		log.Printf("Got upserts %d", len(items))
		a.store.Upsert(items...)
		return nil
	})
	if err != nil {
		return err
	}

	deletes, err := conn.Channel()
	if err != nil {
		return err
	}
	err = messaging.Listen(deletes, country, messaging.ProductsDeleted, func(msg messaging.DeletedProducts) error {
		log.Printf("Got deletes %d", len(msg.Ids))
		a.store.Delete(msg.Ids...)
		return nil
	})
	if err != nil {
		return err
	}
	log.Printf("Listening for catalog changes on %s", country)
	return nil
}
