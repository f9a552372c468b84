package request_test

import (
	"errors"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/raywall/dynamodb-quick-service/expression"
	"github.com/raywall/dynamodb-quick-service/request"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var userKey = request.Key{"id": &types.AttributeValueMemberS{Value: "u-1"}}

// ignoreNoCopy ignora os campos não exportados noSmithyDocumentSerde do SDK.
var ignoreNoCopy = cmpopts.IgnoreUnexported(
	dynamodb.PutItemInput{}, dynamodb.GetItemInput{}, dynamodb.DeleteItemInput{},
	dynamodb.ScanInput{}, dynamodb.QueryInput{}, dynamodb.UpdateItemInput{},
	types.AttributeValueMemberS{}, types.AttributeValueMemberN{}, types.AttributeValueMemberBOOL{},
)

func TestPut(t *testing.T) {
	t.Parallel()

	item := expression.NewParams().Set("id", "u-1").Set("age", 30).Set("admin", false)
	got, err := request.Put("users", item)
	require.NoError(t, err)

	want := &dynamodb.PutItemInput{
		TableName: aws.String("users"),
		Item: map[string]types.AttributeValue{
			"id":    &types.AttributeValueMemberS{Value: "u-1"},
			"age":   &types.AttributeValueMemberN{Value: "30"},
			"admin": &types.AttributeValueMemberBOOL{Value: false},
		},
	}
	if diff := cmp.Diff(want, got, ignoreNoCopy); diff != "" {
		t.Errorf("Put mismatch (-want +got):\n%s", diff)
	}
	assert.Nil(t, got.ConditionExpression)
}

func TestConditionalPut(t *testing.T) {
	t.Parallel()

	item := expression.NewParams().Set("id", "u-1")
	got, err := request.ConditionalPut("users", item, "id")
	require.NoError(t, err)

	require.NotNil(t, got.ConditionExpression)
	assert.Equal(t, "attribute_not_exists (#0)", *got.ConditionExpression)
	assert.Equal(t, map[string]string{"#0": "id"}, got.ExpressionAttributeNames)
	assert.Empty(t, got.ExpressionAttributeValues)

	_, err = request.ConditionalPut("users", item, "")
	assert.ErrorIs(t, err, request.ErrMissingKey)
}

func TestGetAndDelete(t *testing.T) {
	t.Parallel()

	get, err := request.Get("users", userKey)
	require.NoError(t, err)
	assert.Equal(t, "users", aws.ToString(get.TableName))
	assert.Equal(t, userKey, get.Key)

	del, err := request.Delete("users", userKey)
	require.NoError(t, err)
	assert.Equal(t, "users", aws.ToString(del.TableName))
	assert.Equal(t, userKey, del.Key)
}

func TestContractErrors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		call func() error
		want error
	}{
		{"put without table", func() error { _, err := request.Put("", expression.NewParams().Set("a", 1)); return err }, request.ErrMissingTable},
		{"put without item", func() error { _, err := request.Put("t", nil); return err }, request.ErrEmptyParams},
		{"get without table", func() error { _, err := request.Get("", userKey); return err }, request.ErrMissingTable},
		{"get without key", func() error { _, err := request.Get("t", nil); return err }, request.ErrMissingKey},
		{"delete without key", func() error { _, err := request.Delete("t", request.Key{}); return err }, request.ErrMissingKey},
		{"scan without table", func() error { _, err := request.Scan("", request.ScanParams{}); return err }, request.ErrMissingTable},
		{"query without conditions", func() error { _, err := request.Query("t", request.QueryParams{}); return err }, request.ErrEmptyParams},
		{"update without key", func() error {
			_, err := request.Update("t", nil, expression.NewParams().Set("a", 1))
			return err
		}, request.ErrMissingKey},
		{"update with key attributes only", func() error {
			_, err := request.Update("t", userKey, expression.NewParams().Set("id", "u-2"))
			return err
		}, request.ErrEmptyParams},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.call()
			assert.ErrorIs(t, err, tt.want)

			var contractErr *request.ContractError
			assert.True(t, errors.As(err, &contractErr))
		})
	}
}

func TestScan_Defaults(t *testing.T) {
	t.Parallel()

	got, err := request.Scan("users", request.ScanParams{})
	require.NoError(t, err)

	assert.Equal(t, int32(1000), aws.ToInt32(got.Limit))
	assert.Equal(t, types.SelectAllAttributes, got.Select)
	assert.Nil(t, got.FilterExpression)
	assert.Nil(t, got.ProjectionExpression)
	assert.Nil(t, got.ExpressionAttributeNames)
	assert.Nil(t, got.ExpressionAttributeValues)
	assert.Nil(t, got.ExclusiveStartKey)
}

func TestScan_FilterAndProjection(t *testing.T) {
	t.Parallel()

	start := request.Key{"id": &types.AttributeValueMemberS{Value: "u-9"}}
	got, err := request.Scan("users", request.ScanParams{
		Filters:    expression.NewParams().Set("name", "John Doe").Set("age", 25),
		Projection: []string{"id", "name", "email"},
		Limit:      50,
		StartKey:   start,
	}, request.WithJoiner("Or"))
	require.NoError(t, err)

	assert.Equal(t, int32(50), aws.ToInt32(got.Limit))
	assert.Equal(t, types.SelectSpecificAttributes, got.Select)
	assert.Equal(t, "#name = :n0 Or age = :a1", aws.ToString(got.FilterExpression))
	assert.Equal(t, "#id, #email", aws.ToString(got.ProjectionExpression))
	assert.Equal(t, map[string]string{"#name": "name", "#id": "id", "#email": "email"}, got.ExpressionAttributeNames)
	assert.Equal(t, map[string]types.AttributeValue{
		":n0": &types.AttributeValueMemberS{Value: "John Doe"},
		":a1": &types.AttributeValueMemberN{Value: "25"},
	}, got.ExpressionAttributeValues)
	assert.Equal(t, start, got.ExclusiveStartKey)
}

func TestScan_ScanLimitOption(t *testing.T) {
	t.Parallel()

	got, err := request.Scan("users", request.ScanParams{}, request.WithScanLimit(10))
	require.NoError(t, err)
	assert.Equal(t, int32(10), aws.ToInt32(got.Limit))
}

func TestScan_EmptyAliasesOption(t *testing.T) {
	t.Parallel()

	got, err := request.Scan("users", request.ScanParams{}, request.WithEmptyAliases())
	require.NoError(t, err)
	assert.Equal(t, map[string]string{}, got.ExpressionAttributeNames)
	assert.Equal(t, map[string]types.AttributeValue{}, got.ExpressionAttributeValues)
}

func TestQuery(t *testing.T) {
	t.Parallel()

	start := request.Key{
		"pk": &types.AttributeValueMemberS{Value: "ORG#1"},
		"sk": &types.AttributeValueMemberS{Value: "USER#9"},
	}
	got, err := request.Query("users", request.QueryParams{
		Index:      "byOrg",
		Conditions: expression.NewParams().Set("pk", "ORG#1"),
		Filters:    expression.NewParams().Set("status", "active"),
		Limit:      20,
		StartKey:   start,
	})
	require.NoError(t, err)

	want := &dynamodb.QueryInput{
		TableName:              aws.String("users"),
		IndexName:              aws.String("byOrg"),
		Limit:                  aws.Int32(20),
		ConsistentRead:         aws.Bool(true),
		KeyConditionExpression: aws.String("pk = :p"),
		FilterExpression:       aws.String("#status = :s1"),
		ExclusiveStartKey:      start,
		ExpressionAttributeNames: map[string]string{
			"#status": "status",
		},
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":p":  &types.AttributeValueMemberS{Value: "ORG#1"},
			":s1": &types.AttributeValueMemberS{Value: "active"},
		},
	}
	if diff := cmp.Diff(want, got, ignoreNoCopy); diff != "" {
		t.Errorf("Query mismatch (-want +got):\n%s", diff)
	}
}

func TestQuery_EventuallyConsistent(t *testing.T) {
	t.Parallel()

	got, err := request.Query("users", request.QueryParams{
		Index:                "gsi1",
		Conditions:           expression.NewParams().Set("email", "a@b.c"),
		EventuallyConsistent: true,
	})
	require.NoError(t, err)

	assert.False(t, aws.ToBool(got.ConsistentRead))
	assert.Nil(t, got.Limit)
	assert.Nil(t, got.ExpressionAttributeNames)
}

func TestUpdate(t *testing.T) {
	t.Parallel()

	attrs := expression.NewParams().Set("id", "ignored").Set("age", 31).Set("updatedAt", int64(1700000000000))
	got, err := request.Update("users", userKey, attrs)
	require.NoError(t, err)

	want := &dynamodb.UpdateItemInput{
		TableName:        aws.String("users"),
		Key:              userKey,
		ReturnValues:     types.ReturnValueAllNew,
		UpdateExpression: aws.String("SET age = :a0, updatedAt = :u1"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":a0": &types.AttributeValueMemberN{Value: "31"},
			":u1": &types.AttributeValueMemberN{Value: "1700000000000"},
		},
	}
	if diff := cmp.Diff(want, got, ignoreNoCopy); diff != "" {
		t.Errorf("Update mismatch (-want +got):\n%s", diff)
	}
}
