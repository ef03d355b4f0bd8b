package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/pkg/errors"
	"go.opentelemetry.io/otel/attribute"

	"github.com/queerlil/handles"
	"github.com/queerlil/handles/internal/domain"
)

const (
	msgNoHandles     = "You have no custom handles yet."
	msgDomainNotSet  = "You don't have a primary domain set. Try 'page domain yourname.is.vgay.fyi' or 'domains' to view a list of available qTLDs."
	msgInvalidPage   = "That page URI is invalid. It must be hosted on %s"
	msgInvalidHandle = "The provided input is not a @handle: %s"
)

type CommandUsecase struct {
	config  domain.Config
	records RecordRepository
	changer HandleChanger
	listing HandleListing
	replier Replier
	now     func() time.Time
}

func NewCommandUsecase(
	config domain.Config,
	records RecordRepository,
	changer HandleChanger,
	listing HandleListing,
	replier Replier,
) *CommandUsecase {
	if len(config.Domains) == 0 {
		config.Domains = domain.DefaultDomains
	}
	if config.AllowedPageHost == "" {
		config.AllowedPageHost = domain.DefaultAllowedPageHost
	}
	return &CommandUsecase{
		config:  config,
		records: records,
		changer: changer,
		listing: listing,
		replier: replier,
		now:     time.Now,
	}
}

// Dispatch runs the command in message on behalf of trigger.Author. Unknown
// commands are logged and produce no reply.
func (uc *CommandUsecase) Dispatch(ctx context.Context, trigger Trigger, message string) error {
	ctx, span := tracer.Start(ctx, "Command.Usecase.Dispatch")
	defer span.End()

	cmd := domain.ParseCommand(message)
	trigger.Command = cmd.Name
	span.SetAttributes(
		attribute.String("command", cmd.Name),
		attribute.String("requester", trigger.Author),
	)

	slog.InfoContext(
		ctx, "command received",
		slog.String("command", cmd.Name),
		slog.String("message", message),
		slog.String("requester", trigger.Author),
		slog.String("module", "command"),
	)

	var err error
	switch cmd.Name {
	case domain.CommandDomains:
		err = uc.domains(ctx, trigger)
	case domain.CommandList:
		err = uc.list(ctx, trigger)
	case domain.CommandAdd:
		err = uc.add(ctx, trigger, cmd)
	case domain.CommandRemove:
		err = uc.remove(ctx, trigger, cmd)
	case domain.CommandPage:
		err = uc.page(ctx, trigger, cmd)
	default:
		slog.WarnContext(
			ctx, "invalid command",
			slog.String("command", cmd.Name),
			slog.Any("parts", cmd.Args),
			slog.String("trigger", trigger.URI()),
			slog.String("module", "command"),
		)
	}
	if err != nil {
		span.RecordError(err)
	}
	return err
}

func (uc *CommandUsecase) domains(ctx context.Context, trigger Trigger) error {
	text := "The following domains are available: \n- " + strings.Join(uc.config.Domains, "\n- ")
	return uc.replier.Reply(ctx, trigger, text)
}

func (uc *CommandUsecase) list(ctx context.Context, trigger Trigger) error {
	entries, err := uc.listing.List(ctx)
	if err != nil {
		return errors.Wrap(err, "failed to read handle listing")
	}

	owned := []string{}
	for _, entry := range entries {
		if entry.Owner == trigger.Author {
			owned = append(owned, entry.Handle)
		}
	}

	slog.InfoContext(ctx, "user handle list", slog.Any("handles", owned), slog.String("module", "command"))

	if len(owned) == 0 {
		return uc.replier.Reply(ctx, trigger, msgNoHandles)
	}
	text := "You have the following handles associated with your account: \n- @" + strings.Join(owned, "\n- @")
	return uc.replier.Reply(ctx, trigger, text)
}

func (uc *CommandUsecase) add(ctx context.Context, trigger Trigger, cmd domain.Command) error {
	handle, ok := cmd.Handle()
	if !ok {
		return uc.replier.Reply(ctx, trigger, fmt.Sprintf(msgInvalidHandle, handle))
	}

	result, err := uc.changer.Add(ctx, handle, trigger.Author)
	if err != nil {
		return errors.Wrap(err, "handle add request failed")
	}

	slog.InfoContext(ctx, "user handle add", slog.String("handle", handle), slog.Int("status", result.StatusCode), slog.String("module", "command"))

	if result.StatusCode != 200 && result.StatusCode != 201 {
		text := fmt.Sprintf("Something went wrong when trying to add @%s to '%s': %d - %s", handle, trigger.Author, result.StatusCode, result.Body)
		return uc.replier.Reply(ctx, trigger, text)
	}
	return uc.replier.Reply(ctx, trigger, fmt.Sprintf("Successfully added @%s to '%s'!", handle, trigger.Author))
}

// remove accepts any 2xx as success while add only accepts 200 and 201.
func (uc *CommandUsecase) remove(ctx context.Context, trigger Trigger, cmd domain.Command) error {
	handle, _ := cmd.Handle()

	result, err := uc.changer.Remove(ctx, handle, trigger.Author)
	if err != nil {
		return errors.Wrap(err, "handle remove request failed")
	}

	slog.InfoContext(ctx, "user handle remove", slog.String("handle", handle), slog.Int("status", result.StatusCode), slog.String("module", "command"))

	if result.StatusCode != 201 && !result.OK() {
		text := fmt.Sprintf("Something went wrong when trying to remove @%s from '%s': %d - %s", handle, trigger.Author, result.StatusCode, result.Body)
		return uc.replier.Reply(ctx, trigger, text)
	}
	return uc.replier.Reply(ctx, trigger, fmt.Sprintf("Removed @%s from '%s'", handle, trigger.Author))
}

func (uc *CommandUsecase) page(ctx context.Context, trigger Trigger, cmd domain.Command) error {
	subcommand := cmd.Arg(0)
	switch subcommand {
	case domain.PageSubcommandDomain:
		return uc.pageDomain(ctx, trigger, cmd.Arg(1))
	case domain.PageSubcommandSet:
		return uc.pageSet(ctx, trigger, cmd.Arg(2))
	default:
		slog.WarnContext(
			ctx, "invalid page command",
			slog.String("subcommand", subcommand),
			slog.Any("parts", cmd.Args),
			slog.String("trigger", trigger.URI()),
			slog.String("module", "command"),
		)
		return nil
	}
}

func (uc *CommandUsecase) pageDomain(ctx context.Context, trigger Trigger, newDomain string) error {
	if newDomain == "" {
		record, err := uc.records.GetDomain(ctx, trigger.Author)
		if err != nil {
			slog.InfoContext(ctx, "no primary domain", slog.String("error", err.Error()), slog.String("module", "command"))
			return uc.replier.Reply(ctx, trigger, msgDomainNotSet)
		}
		return uc.replier.Reply(ctx, trigger, fmt.Sprintf("Your primary domain is 'https://%s'", record.Domain))
	}

	record := handles.DomainRecord{
		Type:      handles.DomainCollection,
		Domain:    newDomain,
		CreatedAt: uc.now().UTC().Format(time.RFC3339Nano),
	}
	if err := uc.records.PutDomain(ctx, trigger.Author, record); err != nil {
		return errors.Wrap(err, "failed to store primary domain")
	}
	return uc.replier.Reply(ctx, trigger, fmt.Sprintf("Your primary domain has been set to 'https://%s'.", newDomain))
}

func (uc *CommandUsecase) pageSet(ctx context.Context, trigger Trigger, fileName string) error {
	href := ""
	if trigger.Embed != nil && trigger.Embed.External != nil {
		href = trigger.Embed.External.URI
	}
	if !uc.allowedPageHref(href) {
		return uc.replier.Reply(ctx, trigger, fmt.Sprintf(msgInvalidPage, uc.config.AllowedPageHost))
	}

	if fileName == "" {
		fileName = domain.DefaultPageFile
	}

	record, err := uc.records.GetDomain(ctx, trigger.Author)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return uc.replier.Reply(ctx, trigger, msgDomainNotSet)
		}
		return errors.Wrap(err, "failed to read primary domain")
	}

	rkey := handles.PageKey(record.Domain, fileName)
	page := handles.PageRecord{
		Type:      handles.PageCollection,
		Href:      href,
		CreatedAt: uc.now().UTC().Format(time.RFC3339Nano),
	}
	if err := uc.records.PutPage(ctx, rkey, page); err != nil {
		return errors.Wrap(err, "failed to store page")
	}

	shown := strings.Replace(fileName, "__", ".", 1)
	return uc.replier.Reply(ctx, trigger, fmt.Sprintf("Your page https://%s/%s is now ready.", record.Domain, shown))
}

// allowedPageHref accepts hrefs on the allowed host, with or without https://.
func (uc *CommandUsecase) allowedPageHref(href string) bool {
	if href == "" {
		return false
	}
	rest := strings.TrimPrefix(href, "https://")
	return strings.HasPrefix(rest, uc.config.AllowedPageHost)
}
