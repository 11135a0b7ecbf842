package usecase

import (
	"testing"
	"time"

	"event-registration/internal/data/entity"
	"event-registration/internal/dto/request"

	"github.com/google/uuid"
)

func TestCreateSpeaker(t *testing.T) {
	t.Run("trims fields and drops blanks", func(t *testing.T) {
		f := newFixture(t)

		speaker, err := f.svc.Speaker.CreateSpeaker(ctx, &request.CreateSpeakerRequest{
			Name:    "  Dr. Ayu Lestari ",
			Title:   strPtr("Lecturer"),
			Company: strPtr("   "),
			Email:   strPtr("ayu@kampus.ac.id"),
		})
		if err != nil {
			t.Fatalf("create speaker: %v", err)
		}
		if speaker.Name != "Dr. Ayu Lestari" {
			t.Fatalf("expected trimmed name, got %q", speaker.Name)
		}
		if speaker.Company != nil {
			t.Fatalf("expected blank company to be dropped, got %q", *speaker.Company)
		}
		if speaker.Title == nil || *speaker.Title != "Lecturer" {
			t.Fatalf("expected title Lecturer, got %v", speaker.Title)
		}
	})

	t.Run("blank name", func(t *testing.T) {
		f := newFixture(t)
		_, err := f.svc.Speaker.CreateSpeaker(ctx, &request.CreateSpeakerRequest{Name: "   "})
		expectKind(t, err, KindValidation)
	})

	t.Run("email used by another speaker", func(t *testing.T) {
		f := newFixture(t)
		if _, err := f.svc.Speaker.CreateSpeaker(ctx, &request.CreateSpeakerRequest{
			Name:  "Budi",
			Email: strPtr("budi@kampus.ac.id"),
		}); err != nil {
			t.Fatalf("create speaker: %v", err)
		}

		_, err := f.svc.Speaker.CreateSpeaker(ctx, &request.CreateSpeakerRequest{
			Name:  "Budi Santoso",
			Email: strPtr("BUDI@kampus.ac.id"),
		})
		expectKind(t, err, KindConflict)
	})
}

func TestGetSpeakers(t *testing.T) {
	f := newFixture(t)
	for _, name := range []string{"Ayu Lestari", "Budi Santoso", "Citra Dewi"} {
		if _, err := f.svc.Speaker.CreateSpeaker(ctx, &request.CreateSpeakerRequest{Name: name}); err != nil {
			t.Fatalf("create speaker %s: %v", name, err)
		}
	}

	page, err := f.svc.Speaker.GetSpeakers(ctx, &request.SpeakerListRequest{
		PaginatedRequest: request.PaginatedRequest{Page: 1, PerPage: 2},
	})
	if err != nil {
		t.Fatalf("get speakers: %v", err)
	}
	if page.Pagination.Total != 3 || len(page.Data) != 2 {
		t.Fatalf("expected 2 of 3 speakers, got %d of %d", len(page.Data), page.Pagination.Total)
	}

	page, err = f.svc.Speaker.GetSpeakers(ctx, &request.SpeakerListRequest{
		PaginatedRequest: request.PaginatedRequest{Page: 1, PerPage: 10},
		Search:           "santoso",
	})
	if err != nil {
		t.Fatalf("search speakers: %v", err)
	}
	if len(page.Data) != 1 || page.Data[0].Name != "Budi Santoso" {
		t.Fatalf("expected only Budi Santoso, got %+v", page.Data)
	}
}

func TestUpdateSpeaker(t *testing.T) {
	t.Run("empty string clears an optional field", func(t *testing.T) {
		f := newFixture(t)
		created, err := f.svc.Speaker.CreateSpeaker(ctx, &request.CreateSpeakerRequest{
			Name:    "Ayu",
			Company: strPtr("Universitas Indonesia"),
			Bio:     strPtr("Researcher"),
		})
		if err != nil {
			t.Fatalf("create speaker: %v", err)
		}

		updated, err := f.svc.Speaker.UpdateSpeaker(ctx, created.ID, &request.UpdateSpeakerRequest{
			Company: strPtr(""),
		})
		if err != nil {
			t.Fatalf("update speaker: %v", err)
		}
		if updated.Company != nil {
			t.Fatalf("expected company to be cleared, got %q", *updated.Company)
		}
		if updated.Bio == nil || *updated.Bio != "Researcher" {
			t.Fatalf("expected bio to be kept, got %v", updated.Bio)
		}
	})

	t.Run("email taken by another speaker", func(t *testing.T) {
		f := newFixture(t)
		if _, err := f.svc.Speaker.CreateSpeaker(ctx, &request.CreateSpeakerRequest{
			Name:  "Ayu",
			Email: strPtr("ayu@kampus.ac.id"),
		}); err != nil {
			t.Fatalf("create speaker: %v", err)
		}
		other, err := f.svc.Speaker.CreateSpeaker(ctx, &request.CreateSpeakerRequest{Name: "Budi"})
		if err != nil {
			t.Fatalf("create speaker: %v", err)
		}

		_, err = f.svc.Speaker.UpdateSpeaker(ctx, other.ID, &request.UpdateSpeakerRequest{
			Email: strPtr("ayu@kampus.ac.id"),
		})
		expectKind(t, err, KindConflict)
	})

	t.Run("keeping its own email", func(t *testing.T) {
		f := newFixture(t)
		created, err := f.svc.Speaker.CreateSpeaker(ctx, &request.CreateSpeakerRequest{
			Name:  "Ayu",
			Email: strPtr("ayu@kampus.ac.id"),
		})
		if err != nil {
			t.Fatalf("create speaker: %v", err)
		}
		if _, err := f.svc.Speaker.UpdateSpeaker(ctx, created.ID, &request.UpdateSpeakerRequest{
			Email: strPtr("ayu@kampus.ac.id"),
		}); err != nil {
			t.Fatalf("expected own email to be accepted, got %v", err)
		}
	})

	t.Run("unknown speaker", func(t *testing.T) {
		f := newFixture(t)
		_, err := f.svc.Speaker.UpdateSpeaker(ctx, uuid.NewString(), &request.UpdateSpeakerRequest{Name: strPtr("X Y")})
		expectKind(t, err, KindNotFound)
	})
}

func TestDeleteSpeaker(t *testing.T) {
	f := newFixture(t)
	created, err := f.svc.Speaker.CreateSpeaker(ctx, &request.CreateSpeakerRequest{Name: "Ayu"})
	if err != nil {
		t.Fatalf("create speaker: %v", err)
	}

	if err := f.svc.Speaker.DeleteSpeaker(ctx, created.ID); err != nil {
		t.Fatalf("delete speaker: %v", err)
	}

	_, err = f.svc.Speaker.GetSpeakerByID(ctx, entity.Caller{}, created.ID)
	expectKind(t, err, KindNotFound)

	err = f.svc.Speaker.DeleteSpeaker(ctx, created.ID)
	expectKind(t, err, KindNotFound)

	expectKind(t, f.svc.Speaker.DeleteSpeaker(ctx, "not-a-uuid"), KindNotFound)
}

func TestGetSpeakerEvents(t *testing.T) {
	f := newFixture(t)
	org := organizer()
	speaker, err := f.svc.Speaker.CreateSpeaker(ctx, &request.CreateSpeakerRequest{Name: "Ayu"})
	if err != nil {
		t.Fatalf("create speaker: %v", err)
	}
	speakerID := uuid.MustParse(speaker.ID)

	published := f.seedEvent(t, eventSeed{start: fixtureNow.Add(48 * time.Hour), total: 10})
	draft := f.seedEvent(t, eventSeed{owner: org.ID, start: fixtureNow.Add(72 * time.Hour), total: 10, status: entity.EventStatusDraft})
	f.seedEvent(t, eventSeed{start: fixtureNow.Add(96 * time.Hour), total: 10})
	for _, event := range []*entity.Event{published, draft} {
		if err := f.store.repository().Speaker.ReplaceForEvent(ctx, event.ID, []*entity.EventSpeaker{
			{EventID: event.ID, SpeakerID: speakerID, CreatedAt: fixtureNow},
		}); err != nil {
			t.Fatalf("link speaker: %v", err)
		}
	}

	list := func(caller entity.Caller) int64 {
		page, err := f.svc.Speaker.GetSpeakerEvents(ctx, caller, speaker.ID, &request.PaginatedRequest{Page: 1, PerPage: 10})
		if err != nil {
			t.Fatalf("get speaker events: %v", err)
		}
		return page.Pagination.Total
	}

	if got := list(student()); got != 1 {
		t.Fatalf("expected student to see 1 event, got %d", got)
	}
	if got := list(org); got != 2 {
		t.Fatalf("expected organizer to see 2 events, got %d", got)
	}

	detail, err := f.svc.Speaker.GetSpeakerByID(ctx, entity.Caller{}, speaker.ID)
	if err != nil {
		t.Fatalf("get speaker: %v", err)
	}
	if detail.TotalEvents != 1 {
		t.Fatalf("expected anonymous total_events 1, got %d", detail.TotalEvents)
	}
}
