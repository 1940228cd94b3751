package database

import (
	"portail-citoyen-backend/models"

	"go.mongodb.org/mongo-driver/mongo"
)

// Stores regroupe les collections du portail
type Stores struct {
	Utilisateurs   Store[models.Utilisateur]
	Evenements     Store[models.Evenement]
	Actualites     Store[models.Actualite]
	Articles       Store[models.Article]
	Campagnes      Store[models.Campagne]
	Programmes     Store[models.ProgrammeActivite]
	Reclamations   Store[models.Reclamation]
	Etablissements Store[models.Etablissement]
	Communes       Store[models.Commune]
	Participations Store[models.Participation]
	Notifications  Store[models.Notification]
	Activite       Store[models.ActivityLog]
	Systeme        Store[models.SystemLog]
	Parametres     Store[models.Parametres]
	Subscriptions  Store[models.PushSubscription]
	FCMTokens      Store[models.FCMToken]
}

// NewMongoStores crée les stores MongoDB sur la base connectée
func NewMongoStores(db *mongo.Database) *Stores {
	return &Stores{
		Utilisateurs:   NewMongoStore[models.Utilisateur](db, CollectionUtilisateurs),
		Evenements:     NewMongoStore[models.Evenement](db, CollectionEvenements),
		Actualites:     NewMongoStore[models.Actualite](db, CollectionActualites),
		Articles:       NewMongoStore[models.Article](db, CollectionArticles),
		Campagnes:      NewMongoStore[models.Campagne](db, CollectionCampagnes),
		Programmes:     NewMongoStore[models.ProgrammeActivite](db, CollectionProgrammes),
		Reclamations:   NewMongoStore[models.Reclamation](db, CollectionReclamations),
		Etablissements: NewMongoStore[models.Etablissement](db, CollectionEtablissements),
		Communes:       NewMongoStore[models.Commune](db, CollectionCommunes),
		Participations: NewMongoStore[models.Participation](db, CollectionParticipations),
		Notifications:  NewMongoStore[models.Notification](db, CollectionNotifications),
		Activite:       NewMongoStore[models.ActivityLog](db, CollectionActivite),
		Systeme:        NewMongoStore[models.SystemLog](db, CollectionSysteme),
		Parametres:     NewMongoStore[models.Parametres](db, CollectionParametres),
		Subscriptions:  NewMongoStore[models.PushSubscription](db, CollectionSubscriptions),
		FCMTokens:      NewMongoStore[models.FCMToken](db, CollectionFCMTokens),
	}
}

// NewMemoryStores crée des stores en mémoire avec les mêmes clés uniques que MongoDB
func NewMemoryStores() *Stores {
	return &Stores{
		Utilisateurs:   NewMemoryStore[models.Utilisateur](CollectionUtilisateurs, UniqueKeys(CollectionUtilisateurs)...),
		Evenements:     NewMemoryStore[models.Evenement](CollectionEvenements),
		Actualites:     NewMemoryStore[models.Actualite](CollectionActualites),
		Articles:       NewMemoryStore[models.Article](CollectionArticles),
		Campagnes:      NewMemoryStore[models.Campagne](CollectionCampagnes),
		Programmes:     NewMemoryStore[models.ProgrammeActivite](CollectionProgrammes),
		Reclamations:   NewMemoryStore[models.Reclamation](CollectionReclamations, UniqueKeys(CollectionReclamations)...),
		Etablissements: NewMemoryStore[models.Etablissement](CollectionEtablissements),
		Communes:       NewMemoryStore[models.Commune](CollectionCommunes),
		Participations: NewMemoryStore[models.Participation](CollectionParticipations, UniqueKeys(CollectionParticipations)...),
		Notifications:  NewMemoryStore[models.Notification](CollectionNotifications),
		Activite:       NewMemoryStore[models.ActivityLog](CollectionActivite),
		Systeme:        NewMemoryStore[models.SystemLog](CollectionSysteme),
		Parametres:     NewMemoryStore[models.Parametres](CollectionParametres),
		Subscriptions:  NewMemoryStore[models.PushSubscription](CollectionSubscriptions, UniqueKeys(CollectionSubscriptions)...),
		FCMTokens:      NewMemoryStore[models.FCMToken](CollectionFCMTokens, UniqueKeys(CollectionFCMTokens)...),
	}
}
