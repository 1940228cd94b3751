package database

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// DB est l'instance de connexion à la base de données MongoDB
var DB *mongo.Database
var Client *mongo.Client

// Connect établit la connexion à la base de données MongoDB
func Connect(uri, dbName string) error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	clientOptions := options.Client().ApplyURI(uri)

	client, err := mongo.Connect(ctx, clientOptions)
	if err != nil {
		return fmt.Errorf("erreur lors de la connexion à MongoDB: %w", err)
	}

	if err = client.Ping(ctx, nil); err != nil {
		return fmt.Errorf("erreur lors du ping MongoDB: %w", err)
	}

	Client = client
	DB = client.Database(dbName)

	log.Println("✓ Connexion à MongoDB établie")

	if err = createIndexes(); err != nil {
		return fmt.Errorf("erreur lors de la création des index: %w", err)
	}

	return nil
}

// Ping vérifie que la connexion MongoDB est active
func Ping() error {
	if Client == nil {
		return fmt.Errorf("client MongoDB non initialisé")
	}
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	return Client.Ping(ctx, nil)
}

// Close ferme la connexion à la base de données
func Close() error {
	if Client != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return Client.Disconnect(ctx)
	}
	return nil
}

// uniqueIndexes liste les clés uniques par collection.
// Le store mémoire reçoit les mêmes clés (voir UniqueKeys).
var uniqueIndexes = map[string][][]string{
	CollectionUtilisateurs:   {{ChampEmail}},
	CollectionParticipations: {{ChampUtilisateurID, "entite", "entiteId"}},
	CollectionReclamations:   {{"numero"}},
	CollectionSubscriptions:  {{"endpoint"}},
	CollectionFCMTokens:      {{"token"}},
}

// UniqueKeys retourne les clés uniques déclarées pour une collection
func UniqueKeys(collection string) [][]string {
	return uniqueIndexes[collection]
}

// createIndexes crée les index nécessaires
func createIndexes() error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	for collection, keys := range uniqueIndexes {
		for _, fields := range keys {
			idx := bson.D{}
			for _, f := range fields {
				idx = append(idx, bson.E{Key: f, Value: 1})
			}
			model := mongo.IndexModel{
				Keys:    idx,
				Options: options.Index().SetUnique(true),
			}
			if _, err := DB.Collection(collection).Indexes().CreateOne(ctx, model); err != nil {
				return fmt.Errorf("erreur lors de la création de l'index %s%v: %w", collection, fields, err)
			}
		}
	}

	// Index de tri et de purge
	secondary := map[string]bson.D{
		CollectionActivite:      {{Key: ChampDateCreation, Value: -1}},
		CollectionSysteme:       {{Key: ChampDateCreation, Value: -1}},
		CollectionNotifications: {{Key: ChampUtilisateurID, Value: 1}, {Key: ChampLu, Value: 1}},
		CollectionEvenements:    {{Key: ChampStatut, Value: 1}, {Key: ChampDateDebut, Value: -1}},
		CollectionCampagnes:     {{Key: ChampStatut, Value: 1}, {Key: ChampDateDebut, Value: -1}},
	}
	for collection, keys := range secondary {
		if _, err := DB.Collection(collection).Indexes().CreateOne(ctx, mongo.IndexModel{Keys: keys}); err != nil {
			return fmt.Errorf("erreur lors de la création de l'index %s: %w", collection, err)
		}
	}

	log.Println("✓ Index MongoDB créés")
	return nil
}

// nextSequence alloue le prochain identifiant numérique d'une collection
func nextSequence(ctx context.Context, db *mongo.Database, name string) (int64, error) {
	var counter struct {
		Seq int64 `bson:"seq"`
	}
	err := db.Collection(CollectionCompteurs).FindOneAndUpdate(
		ctx,
		bson.M{ChampID: name},
		bson.M{BSONInc: bson.M{"seq": int64(1)}},
		options.FindOneAndUpdate().SetUpsert(true).SetReturnDocument(options.After),
	).Decode(&counter)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return 0, fmt.Errorf("séquence %s introuvable", name)
		}
		return 0, fmt.Errorf("erreur lors de l'allocation d'un identifiant %s: %w", name, err)
	}
	return counter.Seq, nil
}
