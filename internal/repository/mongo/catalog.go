package mongo

import (
	"context"
	"errors"
	"regexp"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/shestoi/evstore/internal/repository"
)

// ProductDocument представляет документ товара в коллекции MongoDB
type ProductDocument struct {
	ProductID          string    `bson:"product_id"`
	Name               string    `bson:"name"`
	Kind               string    `bson:"kind"`
	Brand              string    `bson:"brand"`
	UnitPrice          float64   `bson:"unit_price"`
	DiscountPrice      *float64  `bson:"discount_price,omitempty"`
	OnDeal             bool      `bson:"on_deal"`
	DiscountPercentage *float64  `bson:"discount_percentage,omitempty"`
	RangeKm            int       `bson:"range_km"`
	Rating             float64   `bson:"rating"`
	UpdatedAt          time.Time `bson:"updated_at"`
}

// CatalogRepository реализует repository.CatalogRepository используя MongoDB
type CatalogRepository struct {
	col *mongo.Collection
}

// NewCatalogRepository создаёт новый MongoDB каталог.
// Создаёт уникальный индекс на product_id и индекс по name для сортировки листинга.
func NewCatalogRepository(client *mongo.Client, dbName string) *CatalogRepository {
	col := client.Database(dbName).Collection("products")

	indexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "product_id", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		{
			Keys: bson.D{{Key: "kind", Value: 1}, {Key: "name", Value: 1}},
		},
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	// Создаём индексы (если уже существуют - игнорируем ошибку)
	_, _ = col.Indexes().CreateMany(ctx, indexes)

	return &CatalogRepository{
		col: col,
	}
}

// List возвращает товары по фильтру, отсортированные по имени
func (r *CatalogRepository) List(ctx context.Context, filter repository.ProductFilter) ([]repository.Product, error) {
	query := bson.M{}
	if filter.Kind != "" {
		query["kind"] = string(filter.Kind)
	}
	if filter.OnDealOnly {
		query["on_deal"] = true
	}
	if filter.Search != "" {
		pattern := bson.M{"$regex": regexp.QuoteMeta(filter.Search), "$options": "i"}
		query["$or"] = bson.A{
			bson.M{"name": pattern},
			bson.M{"brand": pattern},
		}
	}

	opts := options.Find().SetSort(bson.D{{Key: "name", Value: 1}, {Key: "product_id", Value: 1}})
	cursor, err := r.col.Find(ctx, query, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	out := make([]repository.Product, 0)
	for cursor.Next(ctx) {
		var doc ProductDocument
		if err := cursor.Decode(&doc); err != nil {
			return nil, err
		}
		out = append(out, doc.toDomain())
	}
	if err := cursor.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// GetByID получает товар по ID. Возвращает ErrNotFound, если товара нет.
func (r *CatalogRepository) GetByID(ctx context.Context, id string) (repository.Product, error) {
	var doc ProductDocument
	err := r.col.FindOne(ctx, bson.M{"product_id": id}).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return repository.Product{}, repository.ErrNotFound
		}
		return repository.Product{}, err
	}
	return doc.toDomain(), nil
}

// Upsert создаёт или обновляет товары одной bulk операцией
func (r *CatalogRepository) Upsert(ctx context.Context, products []repository.Product) error {
	if len(products) == 0 {
		return nil
	}

	models := make([]mongo.WriteModel, 0, len(products))
	for _, p := range products {
		doc := fromDomain(p)
		if doc.UpdatedAt.IsZero() {
			doc.UpdatedAt = time.Now().UTC()
		}
		models = append(models, mongo.NewReplaceOneModel().
			SetFilter(bson.M{"product_id": doc.ProductID}).
			SetReplacement(doc).
			SetUpsert(true))
	}

	_, err := r.col.BulkWrite(ctx, models, options.BulkWrite().SetOrdered(false))
	return err
}

func (d ProductDocument) toDomain() repository.Product {
	return repository.Product{
		ID:                 d.ProductID,
		Name:               d.Name,
		Kind:               repository.ProductKind(d.Kind),
		Brand:              d.Brand,
		UnitPrice:          d.UnitPrice,
		DiscountPrice:      d.DiscountPrice,
		OnDeal:             d.OnDeal,
		DiscountPercentage: d.DiscountPercentage,
		RangeKm:            d.RangeKm,
		Rating:             d.Rating,
		UpdatedAt:          d.UpdatedAt,
	}
}

func fromDomain(p repository.Product) ProductDocument {
	return ProductDocument{
		ProductID:          p.ID,
		Name:               p.Name,
		Kind:               string(p.Kind),
		Brand:              p.Brand,
		UnitPrice:          p.UnitPrice,
		DiscountPrice:      p.DiscountPrice,
		OnDeal:             p.OnDeal,
		DiscountPercentage: p.DiscountPercentage,
		RangeKm:            p.RangeKm,
		Rating:             p.Rating,
		UpdatedAt:          p.UpdatedAt,
	}
}
