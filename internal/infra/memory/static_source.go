package memory

import (
	"context"

	"cat-trivia-service/internal/domain"
	"cat-trivia-service/internal/quiz"
)

// StaticSource serves a fixed question list; it is the last link of the source chain
// and the default for tests and demos.
type StaticSource struct {
	questions []domain.Question
}

func NewStaticSource(questions []domain.Question) *StaticSource {
	return &StaticSource{questions: questions}
}

func (s *StaticSource) Name() string {
	return "static"
}

func (s *StaticSource) FetchCandidates(_ context.Context, difficulty domain.Difficulty, categoryFilter string) ([]domain.Question, error) {
	out := make([]domain.Question, 0, len(s.questions))
	for _, q := range s.questions {
		if difficulty != "" && q.Difficulty != difficulty {
			continue
		}
		if !quiz.MatchesCategory(q.Category, categoryFilter) {
			continue
		}
		out = append(out, q)
	}
	return out, nil
}

func q(id string, difficulty domain.Difficulty, category, text, explanation string, options ...string) domain.Question {
	return domain.Question{
		ID:           id,
		Text:         text,
		Options:      options,
		CorrectIndex: 0,
		Explanation:  explanation,
		Category:     category,
		Difficulty:   difficulty,
	}
}

// DefaultQuestions is the built-in fallback list. The correct option is listed
// first; the builder shuffles options before anything reaches a player.
func DefaultQuestions() []domain.Question {
	easy, medium, hard := domain.DifficultyEasy, domain.DifficultyMedium, domain.DifficultyHard
	return []domain.Question{
		q("static-e1", easy, "Cat Facts", "What is a group of cats called?",
			"A group of cats is called a clowder.",
			"A clowder", "A pack", "A herd", "A pod"),
		q("static-e2", easy, "Cat Facts", "What is a baby cat called?",
			"Young cats are called kittens.",
			"A kitten", "A cub", "A pup", "A calf"),
		q("static-e3", easy, "Cat Behavior", "Which sound does a relaxed, contented cat usually make?",
			"Cats purr when they are content, and sometimes to soothe themselves.",
			"Purring", "Barking", "Neighing", "Quacking"),
		q("static-e4", easy, "Cat Breeds", "Which cat breed is known for being hairless?",
			"The Sphynx is the best-known hairless breed.",
			"Sphynx", "Persian", "Maine Coon", "Ragdoll"),
		q("static-e5", easy, "Big Cats", "Which big cat is often called the king of the jungle?",
			"Lions carry the nickname even though they live on savannas.",
			"Lion", "Cheetah", "Leopard", "Jaguar"),
		q("static-e6", easy, "Cat Anatomy", "What do cats mainly use their whiskers for?",
			"Whiskers are touch receptors that help cats sense nearby objects and gaps.",
			"Sensing their surroundings", "Tasting food", "Hearing sounds", "Storing fat"),
		q("static-e7", easy, "Animal Facts", "What is the largest mammal on Earth?",
			"The blue whale is the largest animal known to have lived.",
			"Blue whale", "African elephant", "Giraffe", "Hippopotamus"),

		q("static-m1", medium, "Cat Anatomy", "How many toes does a typical cat have in total?",
			"Five toes on each front paw and four on each back paw make 18.",
			"18", "16", "20", "24"),
		q("static-m2", medium, "Cat Facts", "What is an intact male cat called?",
			"An intact male cat is called a tom.",
			"A tom", "A buck", "A boar", "A bull"),
		q("static-m3", medium, "Cat Breeds", "Which breed is the official state cat of Maine?",
			"The Maine Coon was named the state cat of Maine in 1985.",
			"Maine Coon", "Siamese", "Bengal", "Abyssinian"),
		q("static-m4", medium, "Cat Behavior", "Roughly how many hours a day does an adult cat sleep?",
			"Adult cats typically sleep between 12 and 16 hours a day.",
			"12 to 16", "4 to 6", "8 to 10", "20 to 24"),
		q("static-m5", medium, "Big Cats", "Which cat is the fastest land animal?",
			"Cheetahs can sprint at roughly 100 km/h over short distances.",
			"Cheetah", "Lion", "Leopard", "Cougar"),
		q("static-m6", medium, "Cat Facts", "What is an intact female cat called?",
			"An intact female cat is called a queen.",
			"A queen", "A jenny", "A doe", "A vixen"),
		q("static-m7", medium, "Animal Facts", "How many hearts does an octopus have?",
			"Octopuses have two branchial hearts and one systemic heart.",
			"Three", "One", "Two", "Four"),

		q("static-h1", hard, "Cat Anatomy", "Which organ in the roof of a cat's mouth lets it analyze scents?",
			"The vomeronasal (Jacobson's) organ is used during the flehmen response.",
			"Vomeronasal organ", "Organ of Corti", "Pineal gland", "Thymus"),
		q("static-h2", hard, "Cat Anatomy", "What is the reflective layer behind a cat's retina called?",
			"The tapetum lucidum reflects light back through the retina, making eyes shine at night.",
			"Tapetum lucidum", "Nictitating membrane", "Fovea centralis", "Choroid plexus"),
		q("static-h3", hard, "Cat Biology", "Cats lack working taste receptors for which flavor?",
			"A mutation in the Tas1r2 gene leaves cats unable to taste sweetness.",
			"Sweet", "Salty", "Bitter", "Sour"),
		q("static-h4", hard, "Cat Breeds", "The Korat cat breed originates from which country?",
			"The Korat comes from Thailand, where it is considered a good-luck cat.",
			"Thailand", "Turkey", "Russia", "Egypt"),
		q("static-h5", hard, "Big Cats", "What is the largest living species of wild cat?",
			"The tiger is the largest living cat species.",
			"Tiger", "Lion", "Jaguar", "Cougar"),
		q("static-h6", hard, "Cat History", "Which ancient civilization worshipped the cat goddess Bastet?",
			"Bastet was worshipped in ancient Egypt, notably at Bubastis.",
			"Ancient Egypt", "Ancient Greece", "Babylon", "Ancient Rome"),
		q("static-h7", hard, "Animal Facts", "What is a group of owls called?",
			"A group of owls is called a parliament.",
			"A parliament", "A murder", "A gaggle", "A pride"),
	}
}
