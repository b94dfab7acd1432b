package pybossa

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"regexp"
	"strings"
)

// questionsMarker locates the question configuration embedded in the
// project's task-presenter template. The presenter is not itself JSON, so
// the marker is found textually and the array that follows is decoded with a
// real JSON parse.
const questionsMarker = `questions":`

var exportURLPattern = regexp.MustCompile(`^(.+)project/(.+)/tasks`)

// QuestionAnswers is one configured question and its permitted answer labels.
type QuestionAnswers struct {
	Question string   `json:"question"`
	Answers  []string `json:"answers"`
}

// DeriveInfoURL rewrites a tasks export URL of the shape
// <base>project/<name>/tasks... into the project-info endpoint
// <base>api/project?short_name=<name>, returning the endpoint and the
// project short name.
func DeriveInfoURL(tasksAPIURL string) (string, string, error) {
	m := exportURLPattern.FindStringSubmatch(tasksAPIURL)
	if m == nil {
		return "", "", fmt.Errorf("%w: %s", ErrBadExportURL, tasksAPIURL)
	}
	base, shortName := m[1], m[2]
	query := url.Values{"short_name": {shortName}}
	return fmt.Sprintf("%sapi/project?%s", base, query.Encode()), shortName, nil
}

// FetchQuestionAnswers retrieves the project info and extracts the ordered
// question/answer configuration from the first project's task-presenter
// field. Question order follows the presenter document and determines
// consensus output file naming.
func (c *Client) FetchQuestionAnswers(ctx context.Context, infoURL string, auth Auth) ([]QuestionAnswers, error) {
	c.logger.Debug("requesting project info")
	body, meta, err := c.get(ctx, infoURL, auth)
	if err != nil {
		return nil, err
	}
	c.logger.Debug("project info response", "status", meta.StatusCode)

	var projects []struct {
		Info struct {
			TaskPresenter string `json:"task_presenter"`
		} `json:"info"`
	}
	if err := json.Unmarshal(body, &projects); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBadProjectInfo, err)
	}
	if len(projects) == 0 {
		return nil, fmt.Errorf("%w: empty project list", ErrBadProjectInfo)
	}

	return parsePresenterQuestions(projects[0].Info.TaskPresenter)
}

// parsePresenterQuestions decodes the question array embedded in the
// task-presenter template.
func parsePresenterQuestions(presenter string) ([]QuestionAnswers, error) {
	idx := strings.Index(presenter, questionsMarker)
	if idx < 0 {
		return nil, fmt.Errorf("%w: no %q marker in task presenter", ErrBadProjectInfo, questionsMarker)
	}

	dec := json.NewDecoder(strings.NewReader(presenter[idx+len(questionsMarker):]))
	dec.DisallowUnknownFields()

	var qas []QuestionAnswers
	if err := dec.Decode(&qas); err != nil {
		return nil, fmt.Errorf("%w: question array: %v", ErrBadProjectInfo, err)
	}
	for _, qa := range qas {
		if qa.Question == "" || len(qa.Answers) == 0 {
			return nil, fmt.Errorf("%w: incomplete question entry %q", ErrBadProjectInfo, qa.Question)
		}
	}
	return qas, nil
}
