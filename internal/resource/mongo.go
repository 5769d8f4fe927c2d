package resource

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// MongoStore is the production Store: one document collection per resource,
// documents keyed by ObjectID. Single-document write atomicity is the only
// consistency mechanism the API needs.
type MongoStore struct {
	coll   *mongo.Collection
	schema *Schema
}

func NewMongoStore(db *mongo.Database, schema *Schema) *MongoStore {
	return &MongoStore{
		coll:   db.Collection(schema.Collection),
		schema: schema,
	}
}

const rankPrefix = "__rank_"

func (s *MongoStore) Create(ctx context.Context, rec *Record) (*Record, error) {
	now := time.Now().UTC()
	oid := primitive.NewObjectID()

	doc := s.encodeFields(rec.Fields)
	doc["_id"] = oid
	doc["createdAt"] = now
	doc["updatedAt"] = now
	if rec.OwnerID != "" {
		doc["ownerId"] = rec.OwnerID
	}

	if _, err := s.coll.InsertOne(ctx, doc); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return nil, s.conflictFor(rec.Fields)
		}
		return nil, fmt.Errorf("insert %s: %w", s.schema.Name, err)
	}

	stored := *rec
	stored.ID = oid.Hex()
	stored.CreatedAt = now
	stored.UpdatedAt = now
	return &stored, nil
}

func (s *MongoStore) GetByID(ctx context.Context, id string) (*Record, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, ErrMalformedID
	}

	var doc bson.M
	if err := s.coll.FindOne(ctx, bson.M{"_id": oid}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("find %s: %w", s.schema.Name, err)
	}

	return s.decodeDoc(doc)
}

func (s *MongoStore) List(ctx context.Context, q Query) ([]*Record, error) {
	filter := bson.M{}
	for name, value := range q.Filter {
		filter[name] = s.encodeValue(s.schema.Field(name), value)
	}

	sortKeys := q.Sort
	if len(sortKeys) == 0 {
		sortKeys = s.schema.DefaultSort
	}

	cursor, err := s.find(ctx, filter, sortKeys)
	if err != nil {
		return nil, fmt.Errorf("list %s: %w", s.schema.Name, err)
	}
	defer cursor.Close(ctx)

	records := make([]*Record, 0)
	for cursor.Next(ctx) {
		var doc bson.M
		if err := cursor.Decode(&doc); err != nil {
			return nil, fmt.Errorf("decode %s: %w", s.schema.Name, err)
		}
		rec, err := s.decodeDoc(doc)
		if err != nil {
			return nil, err
		}
		records = append(records, rec)
	}
	if err := cursor.Err(); err != nil {
		return nil, fmt.Errorf("list %s: %w", s.schema.Name, err)
	}

	return records, nil
}

// find runs either a plain Find or, when a sort key is enum-ranked, an
// aggregation that materializes the rank via $indexOfArray before sorting.
func (s *MongoStore) find(ctx context.Context, filter bson.M, sortKeys []SortKey) (*mongo.Cursor, error) {
	ranked := false
	for _, k := range sortKeys {
		if k.Ranked {
			ranked = true
			break
		}
	}

	if !ranked {
		opts := options.Find()
		if len(sortKeys) > 0 {
			sort := bson.D{}
			for _, k := range sortKeys {
				sort = append(sort, bson.E{Key: k.Field, Value: sortDirection(k.Desc)})
			}
			opts.SetSort(sort)
		}
		return s.coll.Find(ctx, filter, opts)
	}

	addFields := bson.M{}
	sort := bson.D{}
	unset := []string{}
	for _, k := range sortKeys {
		if !k.Ranked {
			sort = append(sort, bson.E{Key: k.Field, Value: sortDirection(k.Desc)})
			continue
		}
		f := s.schema.Field(k.Field)
		if f == nil || len(f.Enum) == 0 {
			sort = append(sort, bson.E{Key: k.Field, Value: sortDirection(k.Desc)})
			continue
		}
		rankField := rankPrefix + k.Field
		addFields[rankField] = bson.M{"$indexOfArray": bson.A{f.Enum, "$" + k.Field}}
		sort = append(sort, bson.E{Key: rankField, Value: sortDirection(k.Desc)})
		unset = append(unset, rankField)
	}

	pipeline := mongo.Pipeline{
		bson.D{{Key: "$match", Value: filter}},
		bson.D{{Key: "$addFields", Value: addFields}},
		bson.D{{Key: "$sort", Value: sort}},
		bson.D{{Key: "$unset", Value: unset}},
	}
	return s.coll.Aggregate(ctx, pipeline)
}

func (s *MongoStore) Update(ctx context.Context, id string, fields map[string]interface{}) (*Record, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, ErrMalformedID
	}

	set := s.encodeFields(fields)
	set["updatedAt"] = time.Now().UTC()

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var doc bson.M
	err = s.coll.FindOneAndUpdate(ctx, bson.M{"_id": oid}, bson.M{"$set": set}, opts).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		if mongo.IsDuplicateKeyError(err) {
			return nil, s.conflictFor(fields)
		}
		return nil, fmt.Errorf("update %s: %w", s.schema.Name, err)
	}

	return s.decodeDoc(doc)
}

func (s *MongoStore) Delete(ctx context.Context, id string) error {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return ErrMalformedID
	}

	res, err := s.coll.DeleteOne(ctx, bson.M{"_id": oid})
	if err != nil {
		return fmt.Errorf("delete %s: %w", s.schema.Name, err)
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *MongoStore) CountWhere(ctx context.Context, field string, value interface{}, excludeID string) (int64, error) {
	filter := bson.M{field: s.encodeValue(s.schema.Field(field), value)}
	if excludeID != "" {
		oid, err := primitive.ObjectIDFromHex(excludeID)
		if err != nil {
			return 0, ErrMalformedID
		}
		filter["_id"] = bson.M{"$ne": oid}
	}

	count, err := s.coll.CountDocuments(ctx, filter)
	if err != nil {
		return 0, fmt.Errorf("count %s: %w", s.schema.Name, err)
	}
	return count, nil
}

// conflictFor picks the unique field responsible for a duplicate-key error.
func (s *MongoStore) conflictFor(fields map[string]interface{}) error {
	for i := range s.schema.Fields {
		f := &s.schema.Fields[i]
		if !f.Unique {
			continue
		}
		if v, ok := fields[f.Name]; ok {
			return &ConflictError{Field: f.Name, Value: fmt.Sprint(v)}
		}
	}
	return &ConflictError{Field: "record", Value: ""}
}

// ========================================
// BSON ENCODING
// ========================================

// encodeFields converts normalized values into their document
// representation: references become ObjectIDs, decimals become Decimal128.
func (s *MongoStore) encodeFields(fields map[string]interface{}) bson.M {
	doc := bson.M{}
	for name, value := range fields {
		doc[name] = s.encodeValue(s.schema.Field(name), value)
	}
	return doc
}

func (s *MongoStore) encodeValue(f *Field, value interface{}) interface{} {
	if f == nil {
		return value
	}
	switch f.Type {
	case Reference:
		if str, ok := value.(string); ok {
			if oid, err := primitive.ObjectIDFromHex(str); err == nil {
				return oid
			}
		}
	case Decimal:
		if dec, ok := value.(decimal.Decimal); ok {
			if d128, err := primitive.ParseDecimal128(dec.String()); err == nil {
				return d128
			}
		}
	}
	return value
}

func (s *MongoStore) decodeDoc(doc bson.M) (*Record, error) {
	oid, ok := doc["_id"].(primitive.ObjectID)
	if !ok {
		return nil, fmt.Errorf("decode %s: document without ObjectID", s.schema.Name)
	}

	rec := &Record{
		ID:     oid.Hex(),
		Fields: make(map[string]interface{}),
	}
	if owner, ok := doc["ownerId"].(string); ok {
		rec.OwnerID = owner
	}
	rec.CreatedAt = decodeTime(doc["createdAt"])
	rec.UpdatedAt = decodeTime(doc["updatedAt"])

	for i := range s.schema.Fields {
		f := &s.schema.Fields[i]
		raw, ok := doc[f.Name]
		if !ok || raw == nil {
			continue
		}
		value, err := decodeValue(f, raw)
		if err != nil {
			return nil, fmt.Errorf("decode %s.%s: %w", s.schema.Name, f.Name, err)
		}
		rec.Fields[f.Name] = value
	}

	return rec, nil
}

func decodeValue(f *Field, raw interface{}) (interface{}, error) {
	switch f.Type {
	case Date:
		if dt, ok := raw.(primitive.DateTime); ok {
			return dt.Time().UTC(), nil
		}
		if t, ok := raw.(time.Time); ok {
			return t.UTC(), nil
		}
		return nil, fmt.Errorf("unexpected date representation %T", raw)
	case Decimal:
		if d128, ok := raw.(primitive.Decimal128); ok {
			return decimal.NewFromString(d128.String())
		}
		if dec, ok := raw.(decimal.Decimal); ok {
			return dec, nil
		}
		return nil, fmt.Errorf("unexpected decimal representation %T", raw)
	case Reference:
		if oid, ok := raw.(primitive.ObjectID); ok {
			return oid.Hex(), nil
		}
		if str, ok := raw.(string); ok {
			return str, nil
		}
		return nil, fmt.Errorf("unexpected reference representation %T", raw)
	case Number:
		switch v := raw.(type) {
		case float64:
			return v, nil
		case int32:
			return float64(v), nil
		case int64:
			return float64(v), nil
		}
		return nil, fmt.Errorf("unexpected number representation %T", raw)
	case List:
		if arr, ok := raw.(primitive.A); ok {
			out := make([]string, 0, len(arr))
			for _, item := range arr {
				if str, ok := item.(string); ok {
					out = append(out, str)
				}
			}
			return out, nil
		}
		if strs, ok := raw.([]string); ok {
			return strs, nil
		}
		return nil, fmt.Errorf("unexpected list representation %T", raw)
	default:
		return raw, nil
	}
}

func decodeTime(raw interface{}) time.Time {
	switch v := raw.(type) {
	case primitive.DateTime:
		return v.Time().UTC()
	case time.Time:
		return v.UTC()
	}
	return time.Time{}
}

func sortDirection(desc bool) int {
	if desc {
		return -1
	}
	return 1
}
