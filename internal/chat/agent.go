package chat

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/bytedance/sonic"
	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/components/tool/utils"
	"github.com/cloudwego/eino/schema"

	"github.com/wolfman30/htx-dental-leads/internal/classify"
	"github.com/wolfman30/htx-dental-leads/internal/dialogue"
	"github.com/wolfman30/htx-dental-leads/internal/leads"
	"github.com/wolfman30/htx-dental-leads/pkg/logging"
)

const (
	submitLeadTool     = "submit_lead"
	submitLeadToolDesc = "Submit a qualified lead when you have the patient's name and phone number"

	// maxHistory bounds how many client-supplied turns reach the model.
	maxHistory = 30
)

// submitLeadArgs is the schema of the submit_lead tool call.
type submitLeadArgs struct {
	Name      string `json:"name" jsonschema:"description=Patient's full name,required"`
	Phone     string `json:"phone" jsonschema:"description=Patient's phone number,required"`
	Procedure string `json:"procedure,omitempty" jsonschema:"description=Procedure of interest"`
	Location  string `json:"location,omitempty" jsonschema:"description=Houston area/neighborhood"`
	Urgency   string `json:"urgency,omitempty" jsonschema:"description=How soon they need treatment,enum=asap,enum=month,enum=researching"`
}

// AgentConfig tunes the conversational agent.
type AgentConfig struct {
	SiteName     string
	SiteURL      string
	PhoneDisplay string
	Model        string
	Temperature  float32
	MaxTokens    int
	Timeout      time.Duration
}

// Agent is the free-form chat assistant. The model converses and signals a
// finished lead through the submit_lead tool; the agent intercepts the call
// and distributes the lead itself.
type Agent struct {
	model       model.ToolCallingChatModel
	builder     *leads.Builder
	distributor leads.Distributor
	script      dialogue.ChatScript
	system      string
	cfg         AgentConfig
	logger      *logging.Logger
}

// NewAgent binds the submit_lead tool to chatModel.
func NewAgent(chatModel model.ToolCallingChatModel, builder *leads.Builder, distributor leads.Distributor, cfg AgentConfig, logger *logging.Logger) (*Agent, error) {
	if chatModel == nil {
		return nil, errors.New("chat: chat model required")
	}
	if builder == nil || distributor == nil {
		panic("chat: builder and distributor required")
	}
	if logger == nil {
		logger = logging.Default()
	}
	if cfg.MaxTokens <= 0 {
		cfg.MaxTokens = 200
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 20 * time.Second
	}

	toolInfo, err := utils.GoStruct2ToolInfo[submitLeadArgs](submitLeadTool, submitLeadToolDesc)
	if err != nil {
		return nil, fmt.Errorf("chat: build tool info: %w", err)
	}
	withTools, err := chatModel.WithTools([]*schema.ToolInfo{toolInfo})
	if err != nil {
		return nil, fmt.Errorf("chat: bind tools: %w", err)
	}

	return &Agent{
		model:       withTools,
		builder:     builder,
		distributor: distributor,
		script:      dialogue.ChatScript{SiteName: cfg.SiteName, PhoneDisplay: cfg.PhoneDisplay},
		system:      SystemPrompt(cfg.SiteName, cfg.SiteURL),
		cfg:         cfg,
		logger:      logger,
	}, nil
}

// Reply answers the latest turn of history.
func (a *Agent) Reply(ctx context.Context, history []Message) Response {
	msgs := a.buildMessages(history)

	opts := []model.Option{
		model.WithTemperature(a.cfg.Temperature),
		model.WithMaxTokens(a.cfg.MaxTokens),
	}
	if a.cfg.Model != "" {
		opts = append(opts, model.WithModel(a.cfg.Model))
	}

	callCtx, cancel := context.WithTimeout(ctx, a.cfg.Timeout)
	defer cancel()
	out, err := a.model.Generate(callCtx, msgs, opts...)
	if err != nil {
		a.logger.Warn("chat completion failed", "error", err)
		return a.lastResort()
	}

	for _, call := range out.ToolCalls {
		if call.Function.Name != submitLeadTool {
			continue
		}
		var args submitLeadArgs
		if err := sonic.UnmarshalString(call.Function.Arguments, &args); err != nil {
			a.logger.Warn("unreadable submit_lead arguments", "error", err)
			return a.lastResort()
		}
		return a.submit(ctx, args)
	}

	content := strings.TrimSpace(out.Content)
	if content == "" {
		return a.lastResort()
	}
	return Response{Role: RoleAssistant, Content: content}
}

func (a *Agent) submit(ctx context.Context, args submitLeadArgs) Response {
	fields := leads.Fields{
		Name:      strings.TrimSpace(args.Name),
		Phone:     strings.TrimSpace(args.Phone),
		Procedure: toolProcedure(args.Procedure),
		Location:  strings.TrimSpace(args.Location),
		Urgency:   leads.Urgency(strings.TrimSpace(args.Urgency)),
	}
	if !fields.HasContact() {
		// The tool fired early; keep the conversation going instead of submitting.
		a.logger.Warn("submit_lead called without contact details")
		return Response{Role: RoleAssistant, Content: a.script.Ask(dialogue.StepContact, fields)}
	}

	lead := a.builder.Build(leads.ChannelChat, fields)
	res := a.distributor.Distribute(ctx, lead)
	a.logger.Info("chat lead submitted", "lead_id", lead.ID, "phone", leads.MaskPhone(lead.Phone), "matched", len(res.Matched))
	return Response{Role: RoleAssistant, Content: a.script.Closing(lead), LeadSubmitted: true}
}

func (a *Agent) buildMessages(history []Message) []*schema.Message {
	if len(history) > maxHistory {
		history = history[len(history)-maxHistory:]
	}
	msgs := make([]*schema.Message, 0, len(history)+1)
	msgs = append(msgs, schema.SystemMessage(a.system))
	for _, m := range history {
		content := strings.TrimSpace(m.Content)
		if content == "" {
			continue
		}
		switch m.Role {
		case RoleUser:
			msgs = append(msgs, schema.UserMessage(content))
		case RoleAssistant:
			msgs = append(msgs, schema.AssistantMessage(content, nil))
		}
		// Client-supplied system turns are ignored.
	}
	return msgs
}

func (a *Agent) lastResort() Response {
	return Response{Role: RoleAssistant, Content: LastResortMessage(a.cfg.PhoneDisplay)}
}

// LastResortMessage is shown when no assistant reply could be produced.
func LastResortMessage(phoneDisplay string) string {
	return fmt.Sprintf("I'm sorry, something went wrong. Please call us at %s.", phoneDisplay)
}

// toolProcedure maps whatever the model wrote for procedure onto the closed
// set: an exact id, otherwise the keyword scan.
func toolProcedure(raw string) leads.ProcedureID {
	if id, ok := leads.ParseProcedure(raw); ok {
		return id
	}
	if strings.TrimSpace(raw) == "" {
		return leads.ProcedureNotSure
	}
	return classify.KeywordProcedure(raw)
}
