package cli

import (
	"errors"

	"github.com/spf13/cobra"

	"timed-quiz-service/internal/config"
	"timed-quiz-service/internal/domain"
)

type gradeReport struct {
	QuizID string             `json:"quizId,omitempty"`
	Title  string             `json:"title"`
	Passed bool               `json:"passed"`
	Result domain.ScoreResult `json:"result"`
}

// NewGradeCmd scores an answer file against a quiz file offline.
func NewGradeCmd(configPath *string) *cobra.Command {
	var quizPath, answersPath, outPath string
	cmd := &cobra.Command{
		Use:   "grade",
		Short: "Score an answers file against a quiz file",
		RunE: func(cmd *cobra.Command, args []string) error {
			if quizPath == "" || answersPath == "" {
				return errors.New("--quiz and --answers are required")
			}
			cfg, err := config.Load(*configPath)
			if err != nil {
				return err
			}
			report, err := grade(cfg, quizPath, answersPath)
			if err != nil {
				return err
			}
			return writeDocument(outPath, report)
		},
	}
	cmd.Flags().StringVar(&quizPath, "quiz", "", "quiz definition (JSON or YAML)")
	cmd.Flags().StringVar(&answersPath, "answers", "", "answers keyed by question id (JSON or YAML)")
	cmd.Flags().StringVarP(&outPath, "out", "o", "", "write the report here instead of stdout")
	return cmd
}

func grade(cfg config.Config, quizPath, answersPath string) (gradeReport, error) {
	var quiz domain.Quiz
	if err := readDocument(quizPath, &quiz); err != nil {
		return gradeReport{}, err
	}
	if err := domain.NewValidator().Quiz(quiz); err != nil {
		return gradeReport{}, err
	}
	var answers domain.Answers
	if err := readDocument(answersPath, &answers); err != nil {
		return gradeReport{}, err
	}
	result := newEvaluator(cfg).Evaluate(quiz, answers)
	return gradeReport{
		QuizID: quiz.ID,
		Title:  quiz.Title,
		Passed: result.Percentage >= quiz.EffectivePassingScore(),
		Result: result,
	}, nil
}
