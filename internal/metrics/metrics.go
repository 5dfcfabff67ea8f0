package metrics

import (
	"context"

	sdkaws "github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/cloudwatch"
	cwtypes "github.com/aws/aws-sdk-go-v2/service/cloudwatch/types"
	"go.uber.org/zap"

	"github.com/imrishuroy/go-maintenance-tickets/internal/aws"
)

// Metric names emitted by the service.
const (
	TicketsCreated       = "TicketsCreated"
	TicketsCompleted     = "TicketsCompleted"
	CleanupEnqueued      = "CleanupEnqueued"
	CleanupRetried       = "CleanupRetried"
	NotificationFailures = "NotificationFailures"
)

// Recorder publishes operational counters to CloudWatch. Best-effort:
// a failed put is logged at debug and dropped. A nil Recorder is a
// no-op, so tests and local runs can skip metrics entirely.
type Recorder struct {
	client    aws.CloudWatchAPI
	namespace string
	log       *zap.Logger
}

// NewRecorder returns a Recorder publishing under the given namespace.
func NewRecorder(client aws.CloudWatchAPI, namespace string, log *zap.Logger) *Recorder {
	return &Recorder{
		client:    client,
		namespace: namespace,
		log:       log,
	}
}

// Count adds one to the named counter.
func (r *Recorder) Count(ctx context.Context, name string) {
	if r == nil || r.client == nil {
		return
	}
	_, err := r.client.PutMetricData(ctx, &cloudwatch.PutMetricDataInput{
		Namespace: &r.namespace,
		MetricData: []cwtypes.MetricDatum{
			{
				MetricName: &name,
				Value:      sdkaws.Float64(1),
				Unit:       cwtypes.StandardUnitCount,
			},
		},
	})
	if err != nil && r.log != nil {
		r.log.Debug("metric put failed", zap.String("metric", name), zap.Error(err))
	}
}
