package server

import (
	"context"
	"log"
	"time"

	"github.com/gorhill/cronexpr"
	"github.com/redis/go-redis/v9"

	"github.com/whiskertrack/whiskertrack/internal/store"
	"github.com/whiskertrack/whiskertrack/provider"
)

// Scheduler periodically regenerates stale AI-generated archive summaries so
// they pick up events recorded after generation. User-edited archives are
// never touched. A redis lock keeps multiple replicas from refreshing the
// same archives.
type Scheduler struct {
	Store       *store.Store
	Rdb         *redis.Client
	LLM         provider.Provider
	RefreshCron string
	Stop        chan struct{}
}

func (s *Scheduler) Start() {
	ticker := time.NewTicker(1 * time.Hour)
	go func() {
		for {
			select {
			case <-s.Stop:
				ticker.Stop()
				return
			case <-ticker.C:
				s.tick()
			}
		}
	}()
}

func (s *Scheduler) tick() {
	ctx := context.Background()
	logger := log.New(log.Writer(), "[SCHED] ", log.LstdFlags)

	if s.Rdb != nil {
		ok, _ := s.Rdb.SetNX(ctx, "sched:lock:archive-refresh", "1", 2*time.Minute).Result()
		if !ok {
			return
		}
		defer s.Rdb.Del(ctx, "sched:lock:archive-refresh")
	}

	cutoff := refreshCutoff(s.RefreshCron, time.Now())
	archives, err := s.Store.ListGeneratedArchivesOlderThan(ctx, cutoff)
	if err != nil {
		logger.Printf("list stale archives: %v", err)
		return
	}
	for _, a := range archives {
		events, err := s.Store.ListEventsByPet(ctx, a.PetID)
		if err != nil || len(events) == 0 {
			continue
		}
		pet, err := s.Store.GetPetByID(ctx, a.PetID)
		if err != nil {
			continue
		}
		content, err := s.LLM.GenerateArchive(ctx, pet, events)
		if err != nil {
			archiveGenerations.WithLabelValues("error").Inc()
			logger.Printf("refresh archive %s: %v", a.ID, err)
			continue
		}
		archiveGenerations.WithLabelValues("ok").Inc()
		if err := s.Store.RefreshArchiveContent(ctx, a.ID, content); err != nil {
			logger.Printf("store refreshed archive %s: %v", a.ID, err)
		}
	}
}

// refreshCutoff maps a cron spec to "stale before this time". Supports
// "@daily", "@hourly", and 5-field cron expressions; an invalid spec falls
// back to @daily.
func refreshCutoff(cronSpec string, now time.Time) time.Time {
	switch cronSpec {
	case "@daily", "":
		return now.Add(-24 * time.Hour)
	case "@hourly":
		return now.Add(-time.Hour)
	default:
		expr, err := cronexpr.Parse(cronSpec)
		if err != nil {
			return now.Add(-24 * time.Hour)
		}
		// interval between the next two firings approximates the period
		next := expr.Next(now)
		after := expr.Next(next)
		period := after.Sub(next)
		if period <= 0 {
			return now.Add(-24 * time.Hour)
		}
		return now.Add(-period)
	}
}
