package database

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"time"

	"portail-citoyen-backend/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// MongoStore implémente Store sur une collection MongoDB
type MongoStore[T any] struct {
	db         *mongo.Database
	collection *mongo.Collection
}

// NewMongoStore crée un store pour une collection
func NewMongoStore[T any](db *mongo.Database, name string) *MongoStore[T] {
	return &MongoStore[T]{
		db:         db,
		collection: db.Collection(name),
	}
}

// Name retourne le nom de la collection
func (s *MongoStore[T]) Name() string {
	return s.collection.Name()
}

// Create insère un document ; l'identifiant est alloué par la séquence de la collection
func (s *MongoStore[T]) Create(ctx context.Context, doc *T) error {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	d, ok := any(doc).(models.Document)
	if !ok {
		return fmt.Errorf("le type %T n'embarque pas models.Base", doc)
	}
	if d.GetID() == 0 {
		id, err := nextSequence(ctx, s.db, s.Name())
		if err != nil {
			return err
		}
		d.SetID(id)
	}
	d.Touch(now())

	if _, err := s.collection.InsertOne(ctx, doc); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return ErrConflit
		}
		return fmt.Errorf("erreur lors de l'insertion dans %s: %w", s.Name(), err)
	}
	return nil
}

// FindByID recherche un document par identifiant
func (s *MongoStore[T]) FindByID(ctx context.Context, id int64) (*T, error) {
	return s.FindOne(ctx, map[string]interface{}{ChampID: id})
}

// FindOne recherche le premier document correspondant aux égalités
func (s *MongoStore[T]) FindOne(ctx context.Context, equals map[string]interface{}) (*T, error) {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	var doc T
	err := s.collection.FindOne(ctx, bson.M(equals)).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("erreur lors de la recherche dans %s: %w", s.Name(), err)
	}
	return &doc, nil
}

// List retourne une page de documents et le total correspondant au filtre
func (s *MongoStore[T]) List(ctx context.Context, f ListFilter) ([]T, int64, error) {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	filter := buildFilter(f)
	total, err := s.collection.CountDocuments(ctx, filter)
	if err != nil {
		return nil, 0, fmt.Errorf("erreur lors du comptage dans %s: %w", s.Name(), err)
	}

	field, dir := sortOf(f)
	opts := options.Find().SetSort(bson.D{{Key: field, Value: dir}, {Key: ChampID, Value: dir}})
	if f.Limit > 0 {
		opts.SetSkip(offset(f)).SetLimit(int64(f.Limit))
	}

	cursor, err := s.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, 0, fmt.Errorf("erreur lors de la lecture de %s: %w", s.Name(), err)
	}
	defer cursor.Close(ctx)

	items := make([]T, 0)
	if err := cursor.All(ctx, &items); err != nil {
		return nil, 0, fmt.Errorf("erreur lors du décodage de %s: %w", s.Name(), err)
	}
	return items, total, nil
}

// Count compte les documents correspondant au filtre
func (s *MongoStore[T]) Count(ctx context.Context, f ListFilter) (int64, error) {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	n, err := s.collection.CountDocuments(ctx, buildFilter(f))
	if err != nil {
		return 0, fmt.Errorf("erreur lors du comptage dans %s: %w", s.Name(), err)
	}
	return n, nil
}

// CountBy regroupe les documents par valeur d'un champ
func (s *MongoStore[T]) CountBy(ctx context.Context, field string, f ListFilter) (map[string]int64, error) {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	pipeline := mongo.Pipeline{
		{{Key: BSONMatch, Value: buildFilter(f)}},
		{{Key: BSONGroup, Value: bson.M{"_id": "$" + field, "count": bson.M{BSONSum: 1}}}},
	}
	cursor, err := s.collection.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, fmt.Errorf("erreur lors de l'agrégation de %s: %w", s.Name(), err)
	}
	defer cursor.Close(ctx)

	var groups []struct {
		Key   interface{} `bson:"_id"`
		Count int64       `bson:"count"`
	}
	if err := cursor.All(ctx, &groups); err != nil {
		return nil, fmt.Errorf("erreur lors du décodage de l'agrégation: %w", err)
	}

	counts := make(map[string]int64, len(groups))
	for _, g := range groups {
		counts[fmt.Sprint(g.Key)] = g.Count
	}
	return counts, nil
}

// UpdateFields applique un $set et retourne le document à jour (nil si absent)
func (s *MongoStore[T]) UpdateFields(ctx context.Context, id int64, fields map[string]interface{}) (*T, error) {
	return s.UpdateFieldsIf(ctx, id, nil, fields)
}

// UpdateFieldsIf applique le $set seulement si le document correspond encore
// à expected (filtre {_id, expected...}). nil, nil quand rien ne correspond.
func (s *MongoStore[T]) UpdateFieldsIf(ctx context.Context, id int64, expected, fields map[string]interface{}) (*T, error) {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	filter := bson.M{ChampID: id}
	for k, v := range expected {
		filter[k] = v
	}

	set := bson.M{ChampDateModification: now()}
	for k, v := range fields {
		set[k] = v
	}

	var doc T
	err := s.collection.FindOneAndUpdate(
		ctx,
		filter,
		bson.M{BSONSet: set},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return nil, ErrConflit
		}
		return nil, fmt.Errorf("erreur lors de la mise à jour dans %s: %w", s.Name(), err)
	}
	return &doc, nil
}

// Increment incrémente atomiquement un compteur
func (s *MongoStore[T]) Increment(ctx context.Context, id int64, field string, delta int64) error {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	res, err := s.collection.UpdateOne(ctx, bson.M{ChampID: id}, bson.M{BSONInc: bson.M{field: delta}})
	if err != nil {
		return fmt.Errorf("erreur lors de l'incrément de %s.%s: %w", s.Name(), field, err)
	}
	if res.MatchedCount == 0 {
		return ErrIntrouvable
	}
	return nil
}

// Delete supprime un document
func (s *MongoStore[T]) Delete(ctx context.Context, id int64) (bool, error) {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	res, err := s.collection.DeleteOne(ctx, bson.M{ChampID: id})
	if err != nil {
		return false, fmt.Errorf("erreur lors de la suppression dans %s: %w", s.Name(), err)
	}
	return res.DeletedCount > 0, nil
}

// DeleteWhere supprime tous les documents correspondant au filtre
func (s *MongoStore[T]) DeleteWhere(ctx context.Context, f ListFilter) (int64, error) {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	res, err := s.collection.DeleteMany(ctx, buildFilter(f))
	if err != nil {
		return 0, fmt.Errorf("erreur lors de la purge de %s: %w", s.Name(), err)
	}
	return res.DeletedCount, nil
}

// buildFilter traduit un ListFilter en filtre MongoDB
func buildFilter(f ListFilter) bson.M {
	conds := make([]bson.M, 0, 4)

	for k, v := range f.Equals {
		conds = append(conds, bson.M{k: v})
	}
	for k, vs := range f.In {
		conds = append(conds, bson.M{k: bson.M{BSONIn: vs}})
	}
	for k, vs := range f.NotIn {
		conds = append(conds, bson.M{k: bson.M{BSONNin: vs}})
	}

	if f.Search != "" && len(f.SearchFields) > 0 {
		or := make([]bson.M, 0, len(f.SearchFields))
		pattern := regexp.QuoteMeta(f.Search)
		for _, field := range f.SearchFields {
			or = append(or, bson.M{field: bson.M{BSONRegex: pattern, BSONOptions: "i"}})
		}
		conds = append(conds, bson.M{BSONOr: or})
	}

	if f.DateField != "" && (f.Since != nil || f.Until != nil) {
		rng := bson.M{}
		if f.Since != nil {
			rng[BSONGte] = *f.Since
		}
		if f.Until != nil {
			rng[BSONLte] = *f.Until
		}
		conds = append(conds, bson.M{f.DateField: rng})
	}

	switch len(conds) {
	case 0:
		return bson.M{}
	case 1:
		return conds[0]
	}
	return bson.M{BSONAnd: conds}
}

func sortOf(f ListFilter) (string, int) {
	if f.Sort == "" {
		return ChampID, -1
	}
	if f.SortDesc {
		return f.Sort, -1
	}
	return f.Sort, 1
}

// now retourne l'instant courant tronqué à la milliseconde (précision BSON)
func now() time.Time {
	return time.Now().UTC().Truncate(time.Millisecond)
}
