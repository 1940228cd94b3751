package services

import (
	"context"
	"fmt"
	"log"
	"time"

	"portail-citoyen-backend/database"
	"portail-citoyen-backend/models"

	"github.com/robfig/cron/v3"
)

// MaintenanceCron exécute les tâches planifiées du portail : purge des journaux
// et rappels de clôture. Aucun statut n'est modifié par ces tâches.
type MaintenanceCron struct {
	activite      database.Store[models.ActivityLog]
	systeme       database.Store[models.SystemLog]
	notifications database.Store[models.Notification]
	scanners      []ClosureScanner
	notifier      *Notifier
	slack         *SlackService
	metrics       *Metrics
	retention     time.Duration
	cron          *cron.Cron
	now           func() time.Time
}

// NewMaintenanceCron crée le planificateur
func NewMaintenanceCron(
	activite database.Store[models.ActivityLog],
	systeme database.Store[models.SystemLog],
	notifications database.Store[models.Notification],
	scanners []ClosureScanner,
	notifier *Notifier,
	slack *SlackService,
	metrics *Metrics,
	retentionDays int,
) *MaintenanceCron {
	return &MaintenanceCron{
		activite:      activite,
		systeme:       systeme,
		notifications: notifications,
		scanners:      scanners,
		notifier:      notifier,
		slack:         slack,
		metrics:       metrics,
		retention:     time.Duration(retentionDays) * 24 * time.Hour,
		cron:          cron.New(),
		now:           time.Now,
	}
}

// Start démarre les tâches planifiées
func (mc *MaintenanceCron) Start() error {
	if _, err := mc.cron.AddFunc("@daily", func() { mc.run("purge_journaux", mc.PurgeLogs) }); err != nil {
		return fmt.Errorf("erreur lors de la planification de la purge: %w", err)
	}
	if _, err := mc.cron.AddFunc("@hourly", func() { mc.run("rappels_cloture", mc.SendClosureReminders) }); err != nil {
		return fmt.Errorf("erreur lors de la planification des rappels: %w", err)
	}
	mc.cron.Start()
	log.Println("✓ Tâches planifiées démarrées (purge quotidienne, rappels de clôture horaires)")
	return nil
}

// Stop arrête le planificateur et attend la fin des tâches en cours
func (mc *MaintenanceCron) Stop() {
	<-mc.cron.Stop().Done()
}

func (mc *MaintenanceCron) run(job string, task func(context.Context) (int64, error)) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	n, err := task(ctx)
	mc.metrics.Job(job, err)
	if err != nil {
		log.Printf("❌ Tâche %s en échec: %v", job, err)
		mc.slack.SendJobReport(job, err.Error(), true)
		return
	}
	if n > 0 {
		log.Printf("🔔 Tâche %s: %d élément(s) traité(s)", job, n)
	}
}

// PurgeLogs supprime les journaux plus anciens que la durée de rétention
func (mc *MaintenanceCron) PurgeLogs(ctx context.Context) (int64, error) {
	limite := mc.now().Add(-mc.retention)
	filter := database.ListFilter{DateField: database.ChampDateCreation, Until: &limite}

	a, err := mc.activite.DeleteWhere(ctx, filter)
	if err != nil {
		return 0, err
	}
	s, err := mc.systeme.DeleteWhere(ctx, filter)
	if err != nil {
		return a, err
	}
	return a + s, nil
}

// SendClosureReminders notifie l'auteur de chaque enregistrement à clôturer,
// une seule fois par enregistrement.
func (mc *MaintenanceCron) SendClosureReminders(ctx context.Context) (int64, error) {
	now := mc.now()
	var sent int64

	for _, scanner := range mc.scanners {
		items, err := scanner.PendingClosure(ctx, now)
		if err != nil {
			return sent, err
		}

		for _, item := range items {
			if item.AuteurID == 0 {
				continue
			}
			lien := fmt.Sprintf("/admin/%s/%d", item.Entite, item.ID)

			deja, err := mc.notifications.Count(ctx, database.ListFilter{Equals: map[string]interface{}{
				database.ChampUtilisateurID: item.AuteurID,
				"type":                      NotifRappelCloture,
				"lien":                      lien,
			}})
			if err != nil {
				return sent, err
			}
			if deja > 0 {
				continue
			}

			message := fmt.Sprintf("« %s » est terminé depuis le %s : le rapport de clôture est attendu.",
				item.Titre, item.Fin.In(models.ParisLocation()).Format("02/01/2006"))
			if _, err := mc.notifier.Notify(ctx, item.AuteurID, NotifRappelCloture, "Clôture à effectuer", message, lien); err != nil {
				return sent, err
			}
			sent++
		}
	}
	return sent, nil
}
