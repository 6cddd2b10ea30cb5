// Package fixtures loads demo competitions for local runs.
package fixtures

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"competition-voting/internal/domain/catalog"
)

type demoCompetition struct {
	input       catalog.CompetitionInput
	contestants []catalog.ContestantInput
}

func day(s string) time.Time {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		panic(err)
	}
	return t
}

func photo(id string, w int) string {
	return fmt.Sprintf("https://images.pexels.com/photos/%s/pexels-photo-%s.jpeg?auto=compress&cs=tinysrgb&w=%d", id, id, w)
}

func contestant(name, description, photoID, category string) catalog.ContestantInput {
	return catalog.ContestantInput{
		Name:        name,
		Description: description,
		Photo:       photo(photoID, 400),
		Category:    category,
		IsActive:    true,
	}
}

var demo = []demoCompetition{
	{
		input: catalog.CompetitionInput{
			Title:       "Talent Show 2024",
			Description: "Annual talent competition featuring singers, dancers, comedians and more",
			CoverImage:  photo("1105666", 800),
			StartDate:   day("2024-01-01"),
			EndDate:     day("2024-12-31"),
			Status:      catalog.StatusActive,
			VotingRules: catalog.VotingRules{MaxVotesPerUser: 5, RequirePayment: true, VotePrice: decimal.NewFromInt(20)},
		},
		contestants: []catalog.ContestantInput{
			contestant("Sarah Johnson", "Aspiring singer with a passion for classical music", "1239291", "Music"),
			contestant("Marcus Chen", "Contemporary dancer and choreographer", "1102341", "Dance"),
			contestant("Emma Rodriguez", "Stand-up comedian and storyteller", "1080213", "Comedy"),
			contestant("David Kumar", "Magic performer and illusionist", "1040880", "Magic"),
		},
	},
	{
		input: catalog.CompetitionInput{
			Title:       "Beauty Pageant 2024",
			Description: "Celebrating beauty, intelligence and talent in our annual pageant",
			CoverImage:  photo("1587927", 800),
			StartDate:   day("2024-02-01"),
			EndDate:     day("2024-11-30"),
			Status:      catalog.StatusActive,
			VotingRules: catalog.VotingRules{MaxVotesPerUser: 3, RequirePayment: true, VotePrice: decimal.NewFromInt(25)},
		},
		contestants: []catalog.ContestantInput{
			contestant("Isabella Martinez", "Model and environmental advocate", "774909", "Beauty"),
			contestant("Sophia Williams", "Medical student and community volunteer", "1043471", "Beauty"),
			contestant("Olivia Thompson", "Artist and social entrepreneur", "1130626", "Beauty"),
		},
	},
	{
		input: catalog.CompetitionInput{
			Title:       "Innovation Challenge",
			Description: "Tech entrepreneurs competing for the best innovative solution",
			CoverImage:  photo("3184465", 800),
			StartDate:   day("2024-03-01"),
			EndDate:     day("2024-10-31"),
			Status:      catalog.StatusDraft,
			VotingRules: catalog.VotingRules{MaxVotesPerUser: 1},
		},
	},
}

// Seed creates the demo catalog through svc unless a competition already
// exists. Vote counters start at zero. It returns the number of competitions
// created.
func Seed(ctx context.Context, svc *catalog.Service, log *zap.Logger) (int, error) {
	existing, err := svc.ListCompetitions(ctx, catalog.CompetitionFilter{})
	if err != nil {
		return 0, err
	}
	if len(existing) > 0 {
		return 0, nil
	}

	for _, d := range demo {
		c, err := svc.CreateCompetition(ctx, d.input)
		if err != nil {
			return 0, fmt.Errorf("seed %q: %w", d.input.Title, err)
		}
		for _, in := range d.contestants {
			in.CompetitionID = c.ID
			if _, err := svc.CreateContestant(ctx, in); err != nil {
				return 0, fmt.Errorf("seed %q: %w", in.Name, err)
			}
		}
	}

	if log != nil {
		log.Info("demo data seeded", zap.Int("competitions", len(demo)))
	}
	return len(demo), nil
}
