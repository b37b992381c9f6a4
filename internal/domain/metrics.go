package domain

import "time"

type MetricsCollector interface {
	RecordProbe(probe ProbeName, kind ErrorKind, duration time.Duration)
	RecordAssessment(mode string, verdict Verdict, duration time.Duration)
	RecordNarrativeIssue(issue string)
	RecordCheck(result CheckResult)
	RecordWorkerStart(workerID string)
	RecordWorkerStop(workerID string)
	RecordSchedulerJob(siteName string)
}
