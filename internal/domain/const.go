package domain

const (
	CommandDomains = "domains"
	CommandList    = "list"
	CommandAdd     = "add"
	CommandRemove  = "remove"
	CommandPage    = "page"

	PageSubcommandDomain = "domain"
	PageSubcommandSet    = "set"
)

const (
	// InvalidHandle stands in for a handle argument that lacks the @ sigil.
	InvalidHandle   = "handle.invalid"
	HandleSigil     = "@"
	DefaultPageFile = "index"
)

var DefaultDomains = []string{
	".hasa.gripe",
	".is.vgay.fyi",
	".doeswet.work",
	".is.tgirl.mom",
	".has.tgirl.mom",
	".on.tgirl.quest",
	".is.tgirlat.work",
	".wants.tgirl.mom",
	".winning.tgirl.quest",
	".failing.tgirl.quest",
}

const DefaultAllowedPageHost = "gist.githubusercontent.com"
