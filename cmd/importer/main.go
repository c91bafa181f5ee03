package main

import (
	"compress/gzip"
	"context"
	"flag"
	"io"
	"log"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/matst80/slask-facets/pkg/catalog"
	"github.com/matst80/slask-facets/pkg/common"
	"github.com/matst80/slask-facets/pkg/messaging"
	"github.com/matst80/slask-facets/pkg/types"
	amqp "github.com/rabbitmq/amqp091-go"
)

var file = flag.String("file", "", "json lines product file, gzipped when ending in .gz")
var deleteIds = flag.String("delete", "", "comma separated product ids to delete")
var batchSize = flag.Int("batch", 500, "products per message")
var rabbitUrl = os.Getenv("RABBIT_HOST")
var country = common.EnvOr("COUNTRY", "se")

func readProducts(filename string) ([]types.Product, error) {
	f, err := os.Open(filename)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	var r io.Reader = f
	if strings.HasSuffix(filename, ".gz") {
		zr, err := gzip.NewReader(f)
		if err != nil {
			return nil, err
		}
		defer zr.Close()
		r = zr
	}
	return catalog.DecodeProducts(r)
}

// assignIds gives products without an id a random one so they can be stored.
func assignIds(items []types.Product) int {
	assigned := 0
	for i := range items {
		if items[i].Id == "" {
			items[i].Id = uuid.NewString()
			assigned++
		}
		if items[i].CreatedAt.IsZero() {
			items[i].CreatedAt = time.Now().UTC()
		}
	}
	return assigned
}

func batches(items []types.Product, size int) [][]types.Product {
	size = max(size, 1)
	ret := make([][]types.Product, 0, len(items)/size+1)
	for start := 0; start < len(items); start += size {
		ret = append(ret, items[start:min(start+size, len(items))])
	}
	return ret
}

func splitIds(value string) []string {
	ret := make([]string, 0)
	for _, id := range strings.Split(value, ",") {
		if id = strings.TrimSpace(id); id != "" {
			ret = append(ret, id)
		}
	}
	return ret
}

func main() {
	flag.Parse()
	if rabbitUrl == "" {
		log.Fatalf("No RABBIT_HOST provided")
	}
	if *file == "" && *deleteIds == "" {
		log.Fatalf("Nothing to do, use -file or -delete")
	}

	conn, err := amqp.DialConfig(rabbitUrl, amqp.Config{
		Properties: amqp.NewConnectionProperties(),
	})
	if err != nil {
		log.Fatalf("Failed to connect to RabbitMQ: %v", err)
	}
	defer conn.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	if *file != "" {
		items, err := readProducts(*file)
		if err != nil {
			log.Fatalf("Failed to read %s: %v", *file, err)
		}
		if n := assignIds(items); n > 0 {
			log.Printf("Assigned ids to %d products", n)
		}
		for _, batch := range batches(items, *batchSize) {
			if err := messaging.SendChange(ctx, conn, country, messaging.ProductsUpserted, batch); err != nil {
				log.Fatalf("Failed to publish upserts: %v", err)
			}
		}
		log.Printf("Published %d products", len(items))
	}

	if ids := splitIds(*deleteIds); len(ids) > 0 {
		err := messaging.SendChange(ctx, conn, country, messaging.ProductsDeleted, messaging.DeletedProducts{Ids: ids})
		if err != nil {
			log.Fatalf("Failed to publish deletes: %v", err)
		}
		log.Printf("Published %d deletes", len(ids))
	}
}
