package clusteracl

// DigestScheme is the authentication scheme used for the two fixed role
// identities. Credential digests are produced externally and treated as opaque
// strings here.
const (
	DigestScheme = "digest"
	MasterUser   = "cluster-master"
	AgentUser    = "cluster-agent"
)

// DigestIdentity builds a digest-scheme principal from a user name and its
// credential digest.
func DigestIdentity(user, digest string) Identity {
	return Identity{Scheme: DigestScheme, ID: user + ":" + digest}
}

// ReadACLUnsafe grants everyone read access. Used as the fallback ACL; the
// catch-all rules below mean it should never actually apply.
var ReadACLUnsafe = []Entry{{Identity: WorldAnyone, Perms: PermRead}}

// DefaultProvider builds the conventional cluster policy from the two shared
// role credentials. Masters get full CRWD on every node. Agents get read
// everywhere plus the minimum write surface they need on their own subtrees,
// which limits the blast radius of a compromised agent credential. All agents
// share one credential, so an agent can modify data belonging to another agent
// to the same extent it can modify its own; that trade-off is inherited from
// the deployment model, not from this provider.
func DefaultProvider(masterDigest, agentDigest string) (*Provider, error) {
	master := DigestIdentity(MasterUser, masterDigest)
	agent := DigestIdentity(AgentUser, agentDigest)
	wc := PathComponentWildcard

	return NewProviderBuilder().
		DefaultACL(ReadACLUnsafe...).
		// Master has CRWD permissions on all paths.
		Rule(".*", PermAll, master).
		// Agent can read all paths.
		Rule(".*", PermRead, agent).
		// Everyone gets read-only access to make troubleshooting easier.
		Rule(".*", PermRead, WorldAnyone).
		// The agent creates its own /config/hosts/<host> subtree and deletes it
		// when re-registering under the same name. It gets no write access to
		// /config/hosts/<host>/jobs, so a compromised agent cannot cause jobs
		// to be deployed onto other agents.
		Rule(ConfigHosts(), PermCreate|PermDelete, agent).
		Rule(ConfigHost(wc), PermCreate|PermDelete, agent).
		Rule(ConfigHostID(wc), PermCreate|PermDelete, agent).
		Rule(ConfigHostPorts(wc), PermCreate|PermDelete, agent).
		Rule(StatusHosts(), PermCreate|PermDelete, agent).
		Rule(StatusHost(wc), PermCreate|PermDelete, agent).
		Rule(StatusHostJobs(wc), PermCreate|PermDelete, agent).
		Rule(StatusHostJob(wc, wc), PermWrite, agent).
		Rule(StatusHostAgentInfo(wc), PermWrite, agent).
		Rule(StatusHostLabels(wc), PermWrite, agent).
		Rule(StatusHostEnvVars(wc), PermWrite, agent).
		Rule(StatusHostUp(wc), PermWrite, agent).
		// Agents append task history anywhere under /history/jobs.
		Rule(HistoryJobs()+"(/.+)?", PermCreate, agent).
		// Pruning old task history events needs DELETE on the event nodes.
		Rule(HistoryJobHostEvents(wc, wc), PermDelete, agent).
		Build()
}
