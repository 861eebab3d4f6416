// Package ports provides the fixed port to service catalog used to label
// service-scan results.
package ports

import "sort"

// Service describes what typically listens on a port.
type Service struct {
	Port      int    `json:"port"`
	Transport string `json:"transport"`
	Name      string `json:"service"`
	Product   string `json:"product"`
	Version   string `json:"version"`
}

// Catalog is the read-only service catalog, sorted by port, one entry per port.
var Catalog = []Service{
	{21, "tcp", "ftp", "vsftpd", "3.0.3"},
	{22, "tcp", "ssh", "OpenSSH", "8.9.1"},
	{23, "tcp", "telnet", "BusyBox telnetd", "1.36.1"},
	{25, "tcp", "smtp", "Postfix smtpd", "3.6.4"},
	{53, "udp", "dns", "ISC BIND", "9.18.12"},
	{80, "tcp", "http", "nginx", "1.24.0"},
	{110, "tcp", "pop3", "Dovecot pop3d", "2.3.16"},
	{111, "tcp", "rpcbind", "rpcbind", "2.0.4"},
	{143, "tcp", "imap", "Dovecot imapd", "2.3.16"},
	{161, "udp", "snmp", "net-snmp", "5.9.1"},
	{389, "tcp", "ldap", "OpenLDAP", "2.5.13"},
	{443, "tcp", "https", "nginx", "1.24.0"},
	{445, "tcp", "microsoft-ds", "Samba smbd", "4.15.13"},
	{465, "tcp", "smtps", "Postfix smtpd", "3.6.4"},
	{587, "tcp", "submission", "Postfix smtpd", "3.6.4"},
	{993, "tcp", "imaps", "Dovecot imapd", "2.3.16"},
	{995, "tcp", "pop3s", "Dovecot pop3d", "2.3.16"},
	{1433, "tcp", "ms-sql-s", "Microsoft SQL Server", "15.0.2000"},
	{1883, "tcp", "mqtt", "Mosquitto", "2.0.15"},
	{2049, "tcp", "nfs", "nfsd", "4.2.0"},
	{3000, "tcp", "http", "Grafana", "9.5.2"},
	{3306, "tcp", "mysql", "MySQL", "8.0.33"},
	{3389, "tcp", "ms-wbt-server", "Microsoft Terminal Services", "10.0.17763"},
	{5432, "tcp", "postgresql", "PostgreSQL", "15.3.0"},
	{5672, "tcp", "amqp", "RabbitMQ", "3.11.16"},
	{5900, "tcp", "vnc", "RealVNC", "6.11.0"},
	{6379, "tcp", "redis", "Redis", "7.0.11"},
	{6443, "tcp", "https", "Kubernetes API server", "1.27.3"},
	{8080, "tcp", "http-proxy", "Apache Tomcat", "9.0.75"},
	{8443, "tcp", "https-alt", "Jetty", "9.4.51"},
	{9090, "tcp", "http", "Prometheus", "2.44.0"},
	{9200, "tcp", "elasticsearch", "Elasticsearch", "8.8.1"},
	{11211, "tcp", "memcached", "Memcached", "1.6.21"},
	{27017, "tcp", "mongodb", "MongoDB", "6.0.6"},
}

var byPort map[int]Service

func init() {
	seen := make(map[int]bool, len(Catalog))
	deduped := make([]Service, 0, len(Catalog))
	for _, s := range Catalog {
		if !seen[s.Port] {
			seen[s.Port] = true
			deduped = append(deduped, s)
		}
	}
	sort.Slice(deduped, func(i, j int) bool { return deduped[i].Port < deduped[j].Port })
	Catalog = deduped

	byPort = make(map[int]Service, len(Catalog))
	for _, s := range Catalog {
		byPort[s.Port] = s
	}
}

// Lookup returns the catalog entry for port.
func Lookup(port int) (Service, bool) {
	s, ok := byPort[port]
	return s, ok
}

// Name returns the service name usually found on port, or "unknown".
func Name(port int) string {
	if s, ok := byPort[port]; ok {
		return s.Name
	}
	return "unknown"
}
