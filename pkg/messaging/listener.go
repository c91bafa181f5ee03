package messaging

import (
	"log"

	"github.com/matst80/slask-facets/pkg/common/jsoncompat"
	amqp "github.com/rabbitmq/amqp091-go"
)

func DeclareBindAndConsume(ch *amqp.Channel, prefix string, topic ChangeTopic) (<-chan amqp.Delivery, error) {
	if err := DefineTopic(ch, prefix, topic); err != nil {
		return nil, err
	}
	name := getName(prefix, topic)
	q, err := ch.QueueDeclare(
		"",    // name
		false, // durable
		false, // delete when unused
		true,  // exclusive
		false, // no-wait
		nil,   // arguments
	)
	if err != nil {
		return nil, err
	}
	err = ch.QueueBind(q.Name, name, name, false, nil)
	if err != nil {
		return nil, err
	}
	return ch.Consume(
		q.Name,
		"",
		false,
		false,
		false,
		false,
		nil,
	)
}

func ListenToTopic(ch *amqp.Channel, prefix string, topic ChangeTopic, handler func(amqp.Delivery) error) error {
	fc, err := DeclareBindAndConsume(ch, prefix, topic)
	if err != nil {
		return err
	}

	go func(msgs <-chan amqp.Delivery) {
		defer ch.Close()
		for d := range msgs {
			if err := handler(d); err != nil {
				log.Printf("Error processing %s message: %v", topic, err)
				d.Nack(false, false)
				continue
			}
			d.Ack(false)
		}
		log.Printf("Stopped listening to %s", topic)
	}(fc)
	return nil
}

// Listen decodes each delivery as V before handing it to fn.
func Listen[V any](ch *amqp.Channel, prefix string, topic ChangeTopic, fn func(V) error) error {
	return ListenToTopic(ch, prefix, topic, func(d amqp.Delivery) error {
		var data V
		if err := jsoncompat.Unmarshal(d.Body, &data); err != nil {
			return err
		}
		return fn(data)
	})
}
