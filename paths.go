package clusteracl

// Node path helpers for the coordination namespace. The builders take literal
// component names; passing PathComponentWildcard instead yields a pattern
// suitable for ACL rules covering every host or job.

// PathComponentWildcard matches exactly one path component.
const PathComponentWildcard = "[^/]+"

func ConfigHosts() string { return "/config/hosts" }

func ConfigHost(host string) string { return ConfigHosts() + "/" + host }

func ConfigHostID(host string) string { return ConfigHost(host) + "/id" }

func ConfigHostPorts(host string) string { return ConfigHost(host) + "/ports" }

func ConfigHostJobs(host string) string { return ConfigHost(host) + "/jobs" }

func StatusHosts() string { return "/status/hosts" }

func StatusHost(host string) string { return StatusHosts() + "/" + host }

func StatusHostJobs(host string) string { return StatusHost(host) + "/jobs" }

func StatusHostJob(host, job string) string { return StatusHostJobs(host) + "/" + job }

func StatusHostAgentInfo(host string) string { return StatusHost(host) + "/agentinfo" }

func StatusHostLabels(host string) string { return StatusHost(host) + "/labels" }

func StatusHostEnvVars(host string) string { return StatusHost(host) + "/environment" }

func StatusHostUp(host string) string { return StatusHost(host) + "/up" }

func HistoryJobs() string { return "/history/jobs" }

func HistoryJob(job string) string { return HistoryJobs() + "/" + job }

func HistoryJobHosts(job string) string { return HistoryJob(job) + "/hosts" }

func HistoryJobHostEvents(job, host string) string {
	return HistoryJobHosts(job) + "/" + host + "/events"
}
