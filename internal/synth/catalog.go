package synth

type registrar struct {
	Name        string
	WhoisServer string
	AbuseDomain string
}

var registrars = []registrar{
	{"GoDaddy.com, LLC", "whois.godaddy.com", "godaddy.com"},
	{"NameCheap, Inc.", "whois.namecheap.com", "namecheap.com"},
	{"MarkMonitor Inc.", "whois.markmonitor.com", "markmonitor.com"},
	{"Tucows Domains Inc.", "whois.tucows.com", "tucows.com"},
	{"Gandi SAS", "whois.gandi.net", "gandi.net"},
	{"Cloudflare, Inc.", "whois.cloudflare.com", "cloudflare.com"},
	{"Amazon Registrar, Inc.", "whois.registrar.amazon.com", "amazon.com"},
	{"Google LLC", "whois.google.com", "google.com"},
	{"OVH sas", "whois.ovh.com", "ovh.net"},
	{"Network Solutions, LLC", "whois.networksolutions.com", "web.com"},
}

// nameServerPatterns are fmt patterns taking the 1-based server index.
var nameServerPatterns = []string{
	"ns%d.domaincontrol.com",
	"ns%d.cloudflare.com",
	"ns%d.digitalocean.com",
	"dns%d.registrar-servers.com",
	"ns%d.linode.com",
	"ns%d.google.com",
	"ns%d.gandi.net",
}

var domainStatuses = []string{
	"clientTransferProhibited",
	"clientDeleteProhibited",
	"clientUpdateProhibited",
	"clientRenewProhibited",
	"serverTransferProhibited",
	"serverDeleteProhibited",
	"ok",
}

var registrantOrgs = []string{
	"Privacy service provided by Withheld for Privacy ehf",
	"Domains By Proxy, LLC",
	"Contact Privacy Inc. Customer",
	"Data Protected",
	"Whois Privacy Protection Service, Inc.",
	"Redacted Holdings Ltd.",
}

var countries = []string{"US", "CA", "GB", "DE", "FR", "NL", "IS", "SE", "JP", "AU"}

var spfIncludes = []string{
	"_spf.google.com",
	"spf.protection.outlook.com",
	"mailgun.org",
	"sendgrid.net",
	"_spf.mx.cloudflare.net",
	"amazonses.com",
}

var operatingSystems = []string{
	"Ubuntu 22.04",
	"Debian 12",
	"CentOS 7",
	"Windows Server 2019",
	"FreeBSD 13.2",
	"Amazon Linux 2",
	"Alpine Linux 3.18",
}

var hostingOrgs = []string{
	"Amazon.com, Inc.",
	"DigitalOcean, LLC",
	"Hetzner Online GmbH",
	"OVH SAS",
	"Linode, LLC",
	"Google LLC",
	"Microsoft Corporation",
	"Vultr Holdings, LLC",
}

type breach struct {
	Name        string
	Title       string
	Domain      string
	BreachDate  string
	PwnCount    int
	DataClasses []string
}

var breachCatalog = []breach{
	{"Adobe", "Adobe", "adobe.com", "2013-10-04", 152445165, []string{"Email addresses", "Password hints", "Passwords", "Usernames"}},
	{"LinkedIn", "LinkedIn", "linkedin.com", "2012-05-05", 164611595, []string{"Email addresses", "Passwords"}},
	{"Dropbox", "Dropbox", "dropbox.com", "2012-07-01", 68648009, []string{"Email addresses", "Passwords"}},
	{"Canva", "Canva", "canva.com", "2019-05-24", 137272116, []string{"Email addresses", "Geographic locations", "Names", "Passwords", "Usernames"}},
	{"MyFitnessPal", "MyFitnessPal", "myfitnesspal.com", "2018-02-01", 143606147, []string{"Email addresses", "IP addresses", "Passwords", "Usernames"}},
	{"Zynga", "Zynga", "zynga.com", "2019-09-01", 172869660, []string{"Email addresses", "Passwords", "Phone numbers", "Usernames"}},
	{"Dubsmash", "Dubsmash", "dubsmash.com", "2018-12-01", 161749950, []string{"Email addresses", "Geographic locations", "Names", "Passwords", "Phone numbers", "Spoken languages", "Usernames"}},
	{"Trello", "Trello", "trello.com", "2024-01-16", 15111945, []string{"Email addresses", "Names", "Usernames"}},
}

var roleAccounts = []string{
	"abuse", "admin", "billing", "contact", "hello", "hostmaster",
	"info", "press", "privacy", "sales", "security", "support", "webmaster",
}
