package repository

import (
	"context"
	"testing"
	"time"

	. "github.com/smartystreets/goconvey/convey"

	"github.com/Base-InfoFi/Backend/internal/domain/model"
	"github.com/Base-InfoFi/Backend/pkg/logger"
)

func init() {
	_ = logger.Init()
}

func seedProjectAndAuthor(ctx context.Context, s *MemStore) (model.Project, model.Identity) {
	project, err := s.CreateProject(ctx, model.Project{Name: "Base", Slug: "base"})
	So(err, ShouldBeNil)
	author, err := s.ResolveIdentity(ctx, "0xabc", "alice")
	So(err, ShouldBeNil)
	return project, author
}

func TestMemStoreProjects(t *testing.T) {
	Convey("Given an empty store", t, func() {
		ctx := context.Background()
		store := NewMemStore()

		Convey("When a project is created", func() {
			created, err := store.CreateProject(ctx, model.Project{Name: "Base", Slug: "base"})

			Convey("Then it is assigned an id and retrievable by slug", func() {
				So(err, ShouldBeNil)
				So(created.ID, ShouldNotBeEmpty)
				So(created.CreatedAt.IsZero(), ShouldBeFalse)

				got, err := store.ProjectBySlug(ctx, "base")
				So(err, ShouldBeNil)
				So(got.ID, ShouldEqual, created.ID)
			})

			Convey("Then a second project with the same slug is rejected", func() {
				So(err, ShouldBeNil)
				_, err := store.CreateProject(ctx, model.Project{Name: "Other", Slug: "base"})
				So(err, ShouldEqual, ErrDuplicate)
			})
		})

		Convey("When an unknown slug is requested", func() {
			_, err := store.ProjectBySlug(ctx, "missing")

			Convey("Then ErrNotFound is returned", func() {
				So(err, ShouldEqual, ErrNotFound)
			})
		})

		Convey("When a project's context summary is updated", func() {
			created, err := store.CreateProject(ctx, model.Project{Name: "Base", Slug: "base", ContextSummary: "old notes"})
			So(err, ShouldBeNil)

			updated, err := store.UpdateProjectContext(ctx, created.ID, "## Overview\nfresh notes")

			Convey("Then the new summary is persisted", func() {
				So(err, ShouldBeNil)
				So(updated.ContextSummary, ShouldEqual, "## Overview\nfresh notes")

				got, err := store.ProjectBySlug(ctx, "base")
				So(err, ShouldBeNil)
				So(got.ContextSummary, ShouldEqual, "## Overview\nfresh notes")
			})

			Convey("Then an unknown id is rejected", func() {
				_, err := store.UpdateProjectContext(ctx, "missing", "notes")
				So(err, ShouldEqual, ErrNotFound)
			})
		})
	})
}

func TestMemStoreResolveIdentity(t *testing.T) {
	Convey("Given an empty store", t, func() {
		ctx := context.Background()
		store := NewMemStore()

		Convey("When neither wallet nor handle is provided", func() {
			_, err := store.ResolveIdentity(ctx, "", "")

			Convey("Then the identity is rejected", func() {
				So(err, ShouldEqual, ErrInvalidIdentity)
			})
		})

		Convey("When the same wallet is resolved twice", func() {
			first, err := store.ResolveIdentity(ctx, "0xabc", "")
			So(err, ShouldBeNil)
			second, err := store.ResolveIdentity(ctx, "0xabc", "alice")
			So(err, ShouldBeNil)

			Convey("Then one identity exists and the handle is backfilled", func() {
				So(second.ID, ShouldEqual, first.ID)
				So(second.Handle, ShouldEqual, "alice")

				stats, err := store.Counts(ctx)
				So(err, ShouldBeNil)
				So(stats.Identities, ShouldEqual, 1)
			})
		})

		Convey("When a handle-only identity later reveals its wallet", func() {
			first, err := store.ResolveIdentity(ctx, "", "bob")
			So(err, ShouldBeNil)
			second, err := store.ResolveIdentity(ctx, "0xbb", "bob")
			So(err, ShouldBeNil)

			Convey("Then the wallet is attached to the existing identity", func() {
				So(second.ID, ShouldEqual, first.ID)
				So(second.Wallet, ShouldEqual, "0xbb")
			})
		})
	})
}

func TestMemStoreApplyJudgment(t *testing.T) {
	Convey("Given a store with one content item", t, func() {
		ctx := context.Background()
		store := NewMemStore()
		project, author := seedProjectAndAuthor(ctx, store)

		item, err := store.InsertContent(ctx, model.ContentItem{
			ProjectID:  project.ID,
			AuthorID:   author.ID,
			Source:     "twitter",
			RawContent: "base is shipping fast",
		})
		So(err, ShouldBeNil)

		judgment := model.Judgment{
			ContentID:        item.ID,
			InformationScore: 8,
			RelevanceScore:   7,
			InsightScore:     6,
			SpamLikelihood:   0.1,
			Label:            model.LabelGood,
			Reward:           7,
			Slash:            0,
		}

		Convey("When the judgment is applied", func() {
			stored, entry, err := store.ApplyJudgment(ctx, judgment, author.ID, project.ID)

			Convey("Then the ledger reflects the delta", func() {
				So(err, ShouldBeNil)
				So(stored.ID, ShouldNotBeEmpty)
				So(entry.TotalReward, ShouldEqual, 7)
				So(entry.TotalSlash, ShouldEqual, 0)
				So(entry.NetScore, ShouldEqual, 7)
			})

			Convey("Then a second judgment for the same content is rejected", func() {
				So(err, ShouldBeNil)
				_, _, err := store.ApplyJudgment(ctx, judgment, author.ID, project.ID)
				So(err, ShouldEqual, ErrAlreadyJudged)
			})

			Convey("Then the judgment is readable by content id", func() {
				So(err, ShouldBeNil)
				got, err := store.JudgmentByContent(ctx, item.ID)
				So(err, ShouldBeNil)
				So(got.Label, ShouldEqual, model.LabelGood)
			})
		})

		Convey("When two judged items touch the same pair", func() {
			_, _, err := store.ApplyJudgment(ctx, judgment, author.ID, project.ID)
			So(err, ShouldBeNil)

			other, err := store.InsertContent(ctx, model.ContentItem{
				ProjectID:  project.ID,
				AuthorID:   author.ID,
				Source:     "twitter",
				RawContent: "gm gm gm",
			})
			So(err, ShouldBeNil)

			slashing := model.Judgment{
				ContentID:      other.ID,
				SpamLikelihood: 0.9,
				Label:          model.LabelShitposting,
				Reward:         0,
				Slash:          9,
			}
			_, entry, err := store.ApplyJudgment(ctx, slashing, author.ID, project.ID)

			Convey("Then counters accumulate linearly", func() {
				So(err, ShouldBeNil)
				So(entry.TotalReward, ShouldEqual, 7)
				So(entry.TotalSlash, ShouldEqual, 9)
				So(entry.NetScore, ShouldEqual, -2)
			})
		})

		Convey("When the content id is unknown", func() {
			bad := judgment
			bad.ContentID = "missing"
			_, _, err := store.ApplyJudgment(ctx, bad, author.ID, project.ID)

			Convey("Then ErrNotFound is returned", func() {
				So(err, ShouldEqual, ErrNotFound)
			})
		})
	})
}

func TestMemStoreListUnjudged(t *testing.T) {
	Convey("Given a store with judged and unjudged content", t, func() {
		ctx := context.Background()
		clock := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
		store := NewMemStore(WithNow(func() time.Time {
			clock = clock.Add(time.Second)
			return clock
		}))
		project, author := seedProjectAndAuthor(ctx, store)

		older, err := store.InsertContent(ctx, model.ContentItem{
			ProjectID:  project.ID,
			AuthorID:   author.ID,
			Source:     "twitter",
			RawContent: "deep dive on sequencer design",
			Tags:       []string{"infra"},
		})
		So(err, ShouldBeNil)

		newer, err := store.InsertContent(ctx, model.ContentItem{
			ProjectID:  project.ID,
			AuthorID:   author.ID,
			Source:     "farcaster",
			RawContent: "airdrop when",
		})
		So(err, ShouldBeNil)

		Convey("When listed without a filter", func() {
			items, err := store.ListUnjudged(ctx, ContentFilter{})

			Convey("Then both appear newest first", func() {
				So(err, ShouldBeNil)
				So(len(items), ShouldEqual, 2)
				So(items[0].ID, ShouldEqual, newer.ID)
				So(items[1].ID, ShouldEqual, older.ID)
			})
		})

		Convey("When one item gets judged", func() {
			_, _, err := store.ApplyJudgment(ctx, model.Judgment{
				ContentID: newer.ID,
				Label:     model.LabelShitposting,
				Slash:     5,
			}, author.ID, project.ID)
			So(err, ShouldBeNil)

			items, err := store.ListUnjudged(ctx, ContentFilter{})

			Convey("Then it no longer appears", func() {
				So(err, ShouldBeNil)
				So(len(items), ShouldEqual, 1)
				So(items[0].ID, ShouldEqual, older.ID)
			})
		})

		Convey("When a query is provided", func() {
			items, err := store.ListUnjudged(ctx, ContentFilter{Query: "SEQUENCER"})

			Convey("Then matching is case-insensitive on content", func() {
				So(err, ShouldBeNil)
				So(len(items), ShouldEqual, 1)
				So(items[0].ID, ShouldEqual, older.ID)
			})

			tagged, err := store.ListUnjudged(ctx, ContentFilter{Query: "infra"})

			Convey("Then tags match too", func() {
				So(err, ShouldBeNil)
				So(len(tagged), ShouldEqual, 1)
				So(tagged[0].ID, ShouldEqual, older.ID)
			})
		})

		Convey("When a limit is provided", func() {
			items, err := store.ListUnjudged(ctx, ContentFilter{Limit: 1})

			Convey("Then only the newest item is returned", func() {
				So(err, ShouldBeNil)
				So(len(items), ShouldEqual, 1)
				So(items[0].ID, ShouldEqual, newer.ID)
			})
		})
	})
}

func TestMemStoreAggregationReads(t *testing.T) {
	Convey("Given a store with judged posts across two authors", t, func() {
		ctx := context.Background()
		store := NewMemStore()
		project, alice := seedProjectAndAuthor(ctx, store)
		bob, err := store.ResolveIdentity(ctx, "0xbob", "bob")
		So(err, ShouldBeNil)

		now := time.Now().UTC()
		insert := func(author model.Identity, postedAt time.Time, reward, slash int) {
			item, err := store.InsertContent(ctx, model.ContentItem{
				ProjectID:  project.ID,
				AuthorID:   author.ID,
				Source:     "twitter",
				RawContent: "post",
				PostedAt:   postedAt,
			})
			So(err, ShouldBeNil)
			label := model.LabelGood
			if slash > reward {
				label = model.LabelShitposting
			}
			_, _, err = store.ApplyJudgment(ctx, model.Judgment{
				ContentID: item.ID,
				Label:     label,
				Reward:    reward,
				Slash:     slash,
			}, author.ID, project.ID)
			So(err, ShouldBeNil)
		}

		insert(alice, now.Add(-2*time.Hour), 6, 0)
		insert(alice, now.Add(-72*time.Hour), 4, 0)
		insert(bob, now.Add(-1*time.Hour), 0, 8)

		Convey("When judged posts are read unbounded", func() {
			posts, err := store.JudgedPosts(ctx, JudgedPostFilter{ProjectID: project.ID})

			Convey("Then all three appear with join fields filled", func() {
				So(err, ShouldBeNil)
				So(len(posts), ShouldEqual, 3)
				So(posts[0].ProjectSlug, ShouldEqual, "base")
				So(posts[0].Handle, ShouldNotBeEmpty)
			})
		})

		Convey("When judged posts are read with a 24h bound", func() {
			posts, err := store.JudgedPosts(ctx, JudgedPostFilter{
				ProjectID: project.ID,
				Since:     now.Add(-24 * time.Hour),
				Bounded:   true,
			})

			Convey("Then the 72h-old post is excluded", func() {
				So(err, ShouldBeNil)
				So(len(posts), ShouldEqual, 2)
			})
		})

		Convey("When ledger snapshots are read for the project", func() {
			snaps, err := store.LedgerSnapshots(ctx, project.ID, "")

			Convey("Then both pairs appear with accumulated totals", func() {
				So(err, ShouldBeNil)
				So(len(snaps), ShouldEqual, 2)

				byUser := map[string]int{}
				for _, snap := range snaps {
					byUser[snap.UserID] = snap.NetScore
				}
				So(byUser[alice.ID], ShouldEqual, 10)
				So(byUser[bob.ID], ShouldEqual, -8)
			})
		})

		Convey("When one pair's ledger is read directly", func() {
			entry, err := store.Ledger(ctx, bob.ID, project.ID)

			Convey("Then totals match the applied judgments", func() {
				So(err, ShouldBeNil)
				So(entry.TotalReward, ShouldEqual, 0)
				So(entry.TotalSlash, ShouldEqual, 8)
				So(entry.NetScore, ShouldEqual, -8)
			})
		})
	})
}
