package messaging

type ChangeTopic string

const (
	ProductsUpserted ChangeTopic = "products_upserted"
	ProductsDeleted  ChangeTopic = "products_deleted"
)

// DeletedProducts is the body sent on ProductsDeleted.
type DeletedProducts struct {
	Ids []string `json:"ids"`
}
