// Package validation checks an automation graph against the structural and configuration
// rules required before it may become active.
package validation

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/dukex/talentflow/pkg/graph"
	"github.com/dukex/talentflow/pkg/models"
	"github.com/dukex/talentflow/pkg/modelregistry"
	"github.com/dukex/talentflow/pkg/template"
	"github.com/go-playground/validator/v10"
	"github.com/xeipuuv/gojsonschema"
)

// terminalTypes are action types whose output nothing downstream is expected to consume.
var terminalTypes = map[models.NodeType]bool{
	models.NodeTypeSendEmail:      true,
	models.NodeTypeCreateActivity: true,
}

// Validator runs every rule and returns all issues in rule order.
type Validator struct {
	catalog  modelregistry.Catalog
	validate *validator.Validate
}

func New(catalog modelregistry.Catalog) *Validator {
	validate := validator.New(validator.WithRequiredStructEnabled())
	validate.RegisterTagNameFunc(func(field reflect.StructField) string {
		name := strings.SplitN(field.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}

		return name
	})

	return &Validator{
		catalog:  catalog,
		validate: validate,
	}
}

// Validate never stops at the first failing rule. Issues come back in rule order and, within a
// rule, in node or edge order, so repeated calls on the same graph return identical lists.
func (v *Validator) Validate(g *graph.Graph) []models.ValidationIssue {
	issues := make([]models.ValidationIssue, 0)

	issues = append(issues, v.checkTriggerCount(g)...)
	issues = append(issues, v.checkEdges(g)...)
	issues = append(issues, v.checkCycles(g)...)
	issues = append(issues, v.checkReachability(g)...)
	issues = append(issues, v.checkConfigs(g)...)
	issues = append(issues, v.checkDeadEnds(g)...)

	return issues
}

// ValidateDocument indexes doc and validates it. Malformed documents fail before any rule runs.
func (v *Validator) ValidateDocument(doc *models.Graph) ([]models.ValidationIssue, error) {
	g, err := graph.FromDocument(doc)
	if err != nil {
		return nil, err
	}

	return v.Validate(g), nil
}

func (v *Validator) checkTriggerCount(g *graph.Graph) []models.ValidationIssue {
	count := len(g.TriggerNodes())
	if count == 1 {
		return nil
	}

	return []models.ValidationIssue{
		issue(models.IssueTriggerCount, "", fmt.Sprintf("graph must have exactly one trigger node, found %d", count)),
	}
}

func (v *Validator) checkEdges(g *graph.Graph) []models.ValidationIssue {
	var issues []models.ValidationIssue

	for _, edge := range g.Edges() {
		target, _ := g.Node(edge.Target)

		switch {
		case edge.Source == edge.Target:
			issues = append(issues, issue(models.IssueInvalidEdge, edge.Source,
				fmt.Sprintf("node %q has an edge to itself", edge.Source)))
		case target.IsTrigger():
			issues = append(issues, issue(models.IssueInvalidEdge, edge.Target,
				fmt.Sprintf("edge %s -> %s points into trigger node %q", edge.Source, edge.Target, edge.Target)))
		}
	}

	return issues
}

func (v *Validator) checkCycles(g *graph.Graph) []models.ValidationIssue {
	back, found := g.FindBackEdge()
	if !found {
		return nil
	}

	return []models.ValidationIssue{
		issue(models.IssueCycleDetected, back.Source,
			fmt.Sprintf("edge %s -> %s closes a cycle", back.Source, back.Target)),
	}
}

// checkReachability is skipped when the graph has no trigger; that is already reported and every
// action node would otherwise be flagged for the same defect.
func (v *Validator) checkReachability(g *graph.Graph) []models.ValidationIssue {
	triggers := g.TriggerNodes()
	if len(triggers) == 0 {
		return nil
	}

	reachable := make(map[string]bool)

	for _, trigger := range triggers {
		for _, node := range g.ReachableFrom(trigger.ID) {
			reachable[node.ID] = true
		}
	}

	var issues []models.ValidationIssue

	for _, node := range g.Nodes() {
		if node.IsAction() && !reachable[node.ID] {
			issues = append(issues, issue(models.IssueUnreachableNode, node.ID,
				fmt.Sprintf("action node %q cannot be reached from the trigger", node.ID)))
		}
	}

	return issues
}

func (v *Validator) checkConfigs(g *graph.Graph) []models.ValidationIssue {
	var issues []models.ValidationIssue

	for _, node := range g.Nodes() {
		problems := v.configProblems(node)
		if len(problems) == 0 {
			continue
		}

		issues = append(issues, issue(models.IssueInvalidConfig, node.ID, strings.Join(problems, "; ")))
	}

	return issues
}

// configProblems lists everything wrong with one node so each node yields at most one issue.
func (v *Validator) configProblems(node *models.Node) []string {
	kind := node.Type.Kind()
	if kind == "" {
		return []string{fmt.Sprintf("unknown node type %q", node.Type)}
	}

	var problems []string

	if node.Kind != kind {
		problems = append(problems, fmt.Sprintf("type %q belongs to kind %q, node declares %q", node.Type, kind, node.Kind))
	}

	if node.Config == nil {
		return append(problems, "config is required")
	}

	if invalid, ok := node.Config.(*models.InvalidConfig); ok {
		return append(problems, invalid.Err.Error())
	}

	if !models.ConfigMatchesType(node.Type, node.Config) {
		return append(problems, fmt.Sprintf("config does not match type %q", node.Type))
	}

	if err := v.validate.Struct(node.Config); err != nil {
		problems = append(problems, fieldProblems(err)...)
	}

	return append(problems, v.semanticProblems(node)...)
}

func (v *Validator) semanticProblems(node *models.Node) []string {
	var problems []string

	switch config := node.Config.(type) {
	case *models.WebhookReceiveConfig:
		if config.Schema != nil {
			_, err := gojsonschema.NewSchema(gojsonschema.NewGoLoader(config.Schema))
			if err != nil {
				problems = append(problems, "schema is not a valid JSON schema: "+err.Error())
			}
		}
	case *models.ModelTriggerConfig:
		problems = append(problems, v.modelProblems(node.Type, config.Model)...)
	case *models.StageChangedConfig:
		problems = append(problems, v.modelProblems(node.Type, config.Model)...)

		if model, ok := v.catalog.Get(config.Model); ok {
			for _, stage := range []string{config.FromStage, config.ToStage} {
				if stage != "" && !model.HasStage(stage) {
					problems = append(problems, fmt.Sprintf("model %q has no stage %q", config.Model, stage))
				}
			}
		}
	case *models.SendWebhookConfig:
		if !config.HasValidMethod() {
			problems = append(problems, fmt.Sprintf("method %q is not one of GET, POST, PUT, PATCH, DELETE", config.Method))
		}
	case *models.SendEmailConfig:
		problems = append(problems, templateProblems("template", config.Template)...)
		problems = append(problems, templateProblems("subject", config.Subject)...)
	case *models.CreateActivityConfig:
		problems = append(problems, templateProblems("message_template", config.MessageTemplate)...)
	}

	return problems
}

func (v *Validator) modelProblems(nodeType models.NodeType, key string) []string {
	if key == "" {
		return nil
	}

	model, ok := v.catalog.Get(key)
	if !ok {
		return []string{fmt.Sprintf("model %q is not an automatable model", key)}
	}

	kind, _ := nodeType.EventKind()
	if !model.SupportsEvent(kind) {
		return []string{fmt.Sprintf("model %q does not emit %s events", key, kind)}
	}

	return nil
}

func (v *Validator) checkDeadEnds(g *graph.Graph) []models.ValidationIssue {
	var issues []models.ValidationIssue

	for _, node := range g.Nodes() {
		if !node.IsAction() || terminalTypes[node.Type] || g.OutDegree(node.ID) > 0 {
			continue
		}

		issues = append(issues, models.ValidationIssue{
			Severity: models.SeverityWarning,
			NodeID:   node.ID,
			Code:     models.IssueDeadEnd,
			Message:  fmt.Sprintf("output of %s node %q is never used", node.Type, node.ID),
		})
	}

	return issues
}

func templateProblems(field, value string) []string {
	if value == "" {
		return nil
	}

	if err := template.Check(value); err != nil {
		return []string{fmt.Sprintf("%s: %v", field, err)}
	}

	return nil
}

func fieldProblems(err error) []string {
	var validationErrors validator.ValidationErrors
	if !errors.As(err, &validationErrors) {
		return []string{err.Error()}
	}

	problems := make([]string, 0, len(validationErrors))
	for _, fieldErr := range validationErrors {
		problems = append(problems, fmt.Sprintf("%s failed %q", fieldErr.Field(), fieldErr.Tag()))
	}

	return problems
}

func issue(code models.IssueCode, nodeID, message string) models.ValidationIssue {
	return models.ValidationIssue{
		Severity: models.SeverityError,
		NodeID:   nodeID,
		Code:     code,
		Message:  message,
	}
}
