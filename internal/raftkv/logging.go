package raftkv

import "github.com/sirupsen/logrus"

// Logger provides structured logging for one node: a fixed set of
// specialized call sites (LogStateChange, LogElectionWon, ...), each
// carrying structured fields (node_id, term, role) via logrus instead of
// a sprintf'd string, so log aggregation doesn't have to parse prose.
type Logger struct {
	entry *logrus.Entry
}

func newLogger(base *logrus.Logger, nodeID int) *Logger {
	if base == nil {
		base = logrus.StandardLogger()
	}
	return &Logger{entry: base.WithField("node_id", nodeID)}
}

func (l *Logger) Info(msg string, kv ...interface{}) {
	l.entry.WithFields(fields(kv)).Info(msg)
}

func (l *Logger) Debug(msg string, kv ...interface{}) {
	l.entry.WithFields(fields(kv)).Debug(msg)
}

func (l *Logger) Warn(msg string, kv ...interface{}) {
	l.entry.WithFields(fields(kv)).Warn(msg)
}

func fields(kv []interface{}) logrus.Fields {
	f := make(logrus.Fields, len(kv)/2)
	for i := 0; i+1 < len(kv); i += 2 {
		key, ok := kv[i].(string)
		if !ok {
			continue
		}
		f[key] = kv[i+1]
	}
	return f
}

// LogStateChange records a Follower<->Leader transition.
func (l *Logger) LogStateChange(oldRole, newRole Role, term uint64) {
	l.Info("state change", "from", oldRole.String(), "to", newRole.String(), "term", term)
}

// LogElectionStart records the beginning of an election round.
func (l *Logger) LogElectionStart(term uint64) {
	l.Info("starting election", "term", term)
}

// LogElectionWon records a won election.
func (l *Logger) LogElectionWon(term uint64, votes, needed int) {
	l.Info("won election", "term", term, "votes", votes, "needed", needed)
}

// LogVoteGranted records this node granting a vote.
func (l *Logger) LogVoteGranted(candidateID int, term uint64) {
	l.Info("granted vote", "candidate_id", candidateID, "term", term)
}

// LogVoteDenied records this node denying a vote.
func (l *Logger) LogVoteDenied(candidateID int, term uint64, reason string) {
	l.Debug("denied vote", "candidate_id", candidateID, "term", term, "reason", reason)
}

// LogHeartbeatSent records a heartbeat broadcast.
func (l *Logger) LogHeartbeatSent(term uint64, peerCount int) {
	l.Debug("sent heartbeat", "term", term, "peers", peerCount)
}

// LogHeartbeatAccepted records accepting an incoming heartbeat.
func (l *Logger) LogHeartbeatAccepted(leaderID int, term uint64) {
	l.Debug("accepted heartbeat", "leader_id", leaderID, "term", term)
}

// LogHeartbeatRejected records rejecting a stale heartbeat.
func (l *Logger) LogHeartbeatRejected(leaderID int, term, myTerm uint64) {
	l.Debug("rejected stale heartbeat", "leader_id", leaderID, "term", term, "my_term", myTerm)
}

// LogTick is the per-second summary the election ticker emits: term, id,
// role, and map contents.
func (l *Logger) LogTick(term uint64, role Role, kv map[string]string) {
	l.Debug("tick", "term", term, "role", role.String(), "kv", kv)
}
