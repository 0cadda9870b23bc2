package cron

import (
	"context"
	"encoding/json"
	"log"
	"time"

	"github.com/hibiken/asynq"
	"go.uber.org/zap"

	"github.com/luisperes28-droid/desperto-app-sub001/config"
	bookingRepo "github.com/luisperes28-droid/desperto-app-sub001/database/repository/booking"
	"github.com/luisperes28-droid/desperto-app-sub001/models"
	"github.com/luisperes28-droid/desperto-app-sub001/services/notification"
	"github.com/luisperes28-droid/desperto-app-sub001/utils"
)

const TypeReminderSend = "reminder:send"

// ReminderPayload is the asynq task body for an appointment reminder.
type ReminderPayload struct {
	BookingID   string `json:"bookingId"`
	ClientID    string `json:"clientId"`
	TherapistID string `json:"therapistId"`
	Date        string `json:"date"`
	StartMinute int    `json:"startMinute"`
}

// InitReminderWorker starts the asynq server and the periodic scan that
// enqueues reminders for upcoming confirmed appointments.
func InitReminderWorker(bookings bookingRepo.BookingRepository, notifSvc notification.NotificationService) {
	redisOpts := asynq.RedisClientOpt{
		Addr:     config.AppConfig.RedisAddr,
		Password: config.AppConfig.RedisPassword,
		DB:       config.AppConfig.RedisReminderQueueDB,
	}

	srv := asynq.NewServer(
		redisOpts,
		asynq.Config{
			Concurrency: 10,
			Queues: map[string]int{
				"default": 1,
			},
		},
	)

	mux := asynq.NewServeMux()
	mux.HandleFunc(TypeReminderSend, handleReminderTask(bookings, notifSvc))

	go scanUpcomingBookings(bookings, asynq.NewClient(redisOpts))

	// Start the async worker with retry logic.
	go func() {
		log.Println("[ReminderWorker] starting async worker...")
		const maxAttempts = 5

		for attempts := 1; attempts <= maxAttempts; attempts++ {
			if err := srv.Run(mux); err != nil {
				log.Printf("[ReminderWorker] attempt %d/%d failed to start worker: %v", attempts, maxAttempts, err)

				if attempts == maxAttempts {
					log.Fatal("[ReminderWorker] max retry attempts reached, exiting")
				}
				time.Sleep(time.Duration(attempts*2) * time.Second)
			} else {
				break
			}
		}
	}()
}

// scanUpcomingBookings periodically enqueues a reminder task for every
// confirmed booking starting inside the lead window that has not been
// reminded yet.
func scanUpcomingBookings(bookings bookingRepo.BookingRepository, client *asynq.Client) {
	logger := utils.GetLogger()

	scanEvery := time.Duration(config.AppConfig.ReminderScanMinutes) * time.Minute
	if scanEvery <= 0 {
		scanEvery = 15 * time.Minute
	}
	lead := time.Duration(config.AppConfig.ReminderLeadHours) * time.Hour
	if lead <= 0 {
		lead = 24 * time.Hour
	}

	ticker := time.NewTicker(scanEvery)
	defer ticker.Stop()

	for {
		now := time.Now()
		horizon := now.Add(lead)

		dates := []string{now.Format("2006-01-02")}
		if d := horizon.Format("2006-01-02"); d != dates[0] {
			dates = append(dates, d)
		}

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		due, err := bookings.ListDueReminders(ctx, dates)
		cancel()
		if err != nil {
			logger.Error("reminder scan failed", zap.Error(err))
			<-ticker.C
			continue
		}

		for _, bk := range due {
			start, err := time.ParseInLocation("2006-01-02", bk.Date, time.Local)
			if err != nil {
				continue
			}
			start = start.Add(time.Duration(bk.StartMinute) * time.Minute)
			if start.Before(now) || start.After(horizon) {
				continue
			}

			payload, err := json.Marshal(ReminderPayload{
				BookingID:   bk.ID,
				ClientID:    bk.ClientID,
				TherapistID: bk.TherapistID,
				Date:        bk.Date,
				StartMinute: bk.StartMinute,
			})
			if err != nil {
				continue
			}
			task := asynq.NewTask(TypeReminderSend, payload)
			// TaskID keyed on booking id keeps rescans from stacking
			// duplicate reminders in the queue.
			if _, err := client.Enqueue(task, asynq.TaskID("reminder:"+bk.ID)); err != nil {
				logger.Warn("failed to enqueue reminder",
					zap.String("bookingID", bk.ID), zap.Error(err))
			}
		}

		<-ticker.C
	}
}

func handleReminderTask(bookings bookingRepo.BookingRepository, notifSvc notification.NotificationService) asynq.HandlerFunc {
	return func(ctx context.Context, task *asynq.Task) error {
		logger := utils.GetLogger()

		var p ReminderPayload
		if err := json.Unmarshal(task.Payload(), &p); err != nil {
			logger.Error("invalid reminder payload", zap.Error(err))
			return err
		}

		message := "You have an appointment on " + p.Date + " at " + models.MinutesToClock(p.StartMinute) + "."
		err := notifSvc.Notify(ctx, p.ClientID, models.NotifyBookingReminder,
			"Upcoming appointment", message, map[string]any{
				"bookingId":   p.BookingID,
				"therapistId": p.TherapistID,
				"date":        p.Date,
				"time":        models.MinutesToClock(p.StartMinute),
			})
		if err != nil {
			logger.Error("failed to send reminder",
				zap.String("bookingID", p.BookingID), zap.Error(err))
			return err
		}

		if err := bookings.MarkReminderSent(ctx, p.BookingID); err != nil {
			logger.Warn("failed to mark reminder sent",
				zap.String("bookingID", p.BookingID), zap.Error(err))
		}
		return nil
	}
}
