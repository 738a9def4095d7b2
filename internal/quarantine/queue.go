// Package quarantine sends change feed records that could not be
// processed to a dead letter queue for out-of-band inspection.
package quarantine

import (
	"encoding/json"

	"github.com/aws/aws-lambda-go/events"
	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/service/sqs"
	"github.com/aws/aws-sdk-go/service/sqs/sqsiface"
	"github.com/juju/errors"
)

// Queue writes quarantined records to an SQS queue.
type Queue struct {
	sqs sqsiface.SQSAPI
	url string
}

// New creates a queue that sends to the given queue URL.
func New(client sqsiface.SQSAPI, queueURL string) *Queue {
	return &Queue{sqs: client, url: queueURL}
}

// Send enqueues a copy of the original stream record. The record is
// written once and never updated; an operator consumes it later.
func (q *Queue) Send(record events.DynamoDBEventRecord) error {
	body, err := json.Marshal(record)
	if err != nil {
		return errors.Annotatef(err, "marshaling record %s", record.EventID)
	}

	_, err = q.sqs.SendMessage(&sqs.SendMessageInput{
		QueueUrl:    aws.String(q.url),
		MessageBody: aws.String(string(body)),
	})
	if err != nil {
		return errors.Annotatef(err, "sending record %s", record.EventID)
	}

	return nil
}
