package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"agenda-widget/models"

	"cloud.google.com/go/firestore"
	"google.golang.org/api/iterator"
	"google.golang.org/api/option"
)

// FirestoreRemote читает коллекции horarios и eventos в том виде, в каком их пишет приложение.
type FirestoreRemote struct {
	client *firestore.Client
}

func NewFirestoreRemote(ctx context.Context, projectID, credentialsFile string) (*FirestoreRemote, error) {
	if projectID == "" {
		return nil, fmt.Errorf("FIRESTORE_PROJECT_ID is required")
	}
	var opts []option.ClientOption
	if credentialsFile != "" {
		opts = append(opts, option.WithCredentialsFile(credentialsFile))
	}
	client, err := firestore.NewClient(ctx, projectID, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create firestore client: %w", err)
	}
	return &FirestoreRemote{client: client}, nil
}

func (r *FirestoreRemote) ActiveSchedule(ctx context.Context, userID string) (*models.ScheduleDocument, error) {
	iter := r.client.Collection("horarios").
		Where("userId", "==", userID).
		Where("esActivo", "==", true).
		Limit(1).
		Documents(ctx)
	defer iter.Stop()

	snap, err := iter.Next()
	if errors.Is(err, iterator.Done) {
		return nil, ErrNoActiveSchedule
	}
	if err != nil {
		return nil, fmt.Errorf("%w: horarios: %w", ErrRemoteQuery, err)
	}

	var doc models.ScheduleDocument
	if err := snap.DataTo(&doc); err != nil {
		return nil, fmt.Errorf("%w: horario %s: %w", ErrRemoteQuery, snap.Ref.ID, err)
	}
	doc.ID = snap.Ref.ID
	return &doc, nil
}

func (r *FirestoreRemote) EventsBetween(ctx context.Context, userID string, from, to time.Time) ([]models.Event, error) {
	snaps, err := r.client.Collection("eventos").
		Where("uid", "==", userID).
		Where("fecha", ">=", from).
		Where("fecha", "<", to).
		OrderBy("fecha", firestore.Asc).
		Documents(ctx).
		GetAll()
	if err != nil {
		return nil, fmt.Errorf("%w: eventos: %w", ErrRemoteQuery, err)
	}

	events := make([]models.Event, 0, len(snaps))
	for _, snap := range snaps {
		var event models.Event
		if err := snap.DataTo(&event); err != nil {
			return nil, fmt.Errorf("%w: evento %s: %w", ErrRemoteQuery, snap.Ref.ID, err)
		}
		event.ID = snap.Ref.ID
		events = append(events, event)
	}
	return events, nil
}

func (r *FirestoreRemote) Close() error {
	return r.client.Close()
}
