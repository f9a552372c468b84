package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/raywall/dynamodb-quick-service/dyndb"
	"github.com/raywall/dynamodb-quick-service/expression"
	"github.com/raywall/dynamodb-quick-service/pkg/config"
	"github.com/raywall/dynamodb-quick-service/request"
)

const usage = `Comandos esperados:
  compile  -op <get|create|put|update|delete|query|scan> -file req.json [-table t] [-hash-key id] [-joiner And|Or]
  validate -file config.yaml|s3://...|dynamodb://...`

func main() {
	os.Exit(run(context.Background(), os.Args[1:], os.Stdout, os.Stderr))
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	if len(args) < 1 {
		fmt.Fprintln(stderr, usage)
		return 1
	}

	switch args[0] {
	case "compile":
		return runCompile(args[1:], stdout, stderr)
	case "validate":
		return runValidate(ctx, args[1:], stdout, stderr)
	default:
		fmt.Fprintf(stderr, "Comando desconhecido: %s\n%s\n", args[0], usage)
		return 1
	}
}

func runCompile(args []string, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("compile", flag.ContinueOnError)
	fs.SetOutput(stderr)
	op := fs.String("op", "", "Operação a montar")
	file := fs.String("file", "", "Arquivo JSON com a requisição simplificada (- para stdin)")
	table := fs.String("table", "", "Tabela usada quando a requisição não informa uma")
	hashKey := fs.String("hash-key", "id", "Hash key usada na condição do create")
	joiner := fs.String("joiner", "And", "Conector das condições de filtro")
	if err := fs.Parse(args); err != nil {
		return 2
	}
	if *op == "" || *file == "" {
		fmt.Fprintln(stderr, "Erro: flags -op e -file são obrigatórias")
		return 1
	}

	raw, err := readInput(*file)
	if err != nil {
		fmt.Fprintf(stderr, "Erro lendo %s: %v\n", *file, err)
		return 1
	}

	var r dyndb.Request
	dec := json.NewDecoder(strings.NewReader(string(raw)))
	dec.UseNumber()
	if err := dec.Decode(&r); err != nil {
		fmt.Fprintf(stderr, "JSON inválido: %v\n", err)
		return 1
	}
	if r.Table == "" {
		r.Table = *table
	}
	if r.Joiner == "" {
		r.Joiner = *joiner
	}

	out, err := compile(*op, r, *hashKey)
	if err != nil {
		fmt.Fprintf(stderr, "Erro ao montar %s: %v\n", *op, err)
		return 1
	}

	enc := json.NewEncoder(stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(out); err != nil {
		fmt.Fprintf(stderr, "Erro ao serializar: %v\n", err)
		return 1
	}
	return 0
}

func runValidate(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("validate", flag.ContinueOnError)
	fs.SetOutput(stderr)
	file := fs.String("file", "", "Caminho do arquivo YAML ou S3/DynamoDB URI")
	if err := fs.Parse(args); err != nil {
		return 2
	}
	if *file == "" {
		fmt.Fprintln(stderr, "Erro: flag -file é obrigatória")
		return 1
	}

	fmt.Fprintf(stdout, "Analisando configuração: %s ...\n", *file)

	cfg, err := config.Load(ctx, *file)
	if err != nil {
		fmt.Fprintf(stderr, "Configuração inválida:\n%v\n", err)
		return 1
	}

	// Output JSON para integração com pipelines
	if os.Getenv("OUTPUT_FORMAT") == "json" {
		data, _ := json.Marshal(map[string]any{
			"valid":   true,
			"service": cfg.Service.Name,
			"table":   cfg.Table.TableName,
			"indexes": len(cfg.Table.Indexes),
		})
		fmt.Fprintln(stdout, string(data))
		return 0
	}
	fmt.Fprintf(stdout, "Configuração válida: serviço %s, tabela %s\n", cfg.Service.Name, cfg.Table.TableName)
	return 0
}

func readInput(path string) ([]byte, error) {
	if path == "-" {
		return io.ReadAll(os.Stdin)
	}
	return os.ReadFile(path)
}

// compile monta a requisição nativa sem executá-la.
func compile(op string, r dyndb.Request, hashKey string) (*view, error) {
	opts := []request.Option{request.WithJoiner(r.Joiner)}

	switch strings.ToLower(op) {
	case "get":
		key, err := encodeKey(r)
		if err != nil {
			return nil, err
		}
		in, err := request.Get(r.Table, key)
		if err != nil {
			return nil, err
		}
		return &view{Operation: "GetItem", TableName: deref(in.TableName), Key: renderMap(in.Key)}, nil

	case "delete":
		key, err := encodeKey(r)
		if err != nil {
			return nil, err
		}
		in, err := request.Delete(r.Table, key)
		if err != nil {
			return nil, err
		}
		return &view{Operation: "DeleteItem", TableName: deref(in.TableName), Key: renderMap(in.Key)}, nil

	case "update":
		key, err := encodeKey(r)
		if err != nil {
			return nil, err
		}
		in, err := request.Update(r.Table, key, r.Item, opts...)
		if err != nil {
			return nil, err
		}
		return &view{
			Operation:        "UpdateItem",
			TableName:        deref(in.TableName),
			Key:              renderMap(in.Key),
			UpdateExpression: deref(in.UpdateExpression),
			Names:            in.ExpressionAttributeNames,
			Values:           renderMap(in.ExpressionAttributeValues),
			ReturnValues:     string(in.ReturnValues),
		}, nil

	case "put":
		in, err := request.Put(r.Table, r.Item)
		if err != nil {
			return nil, err
		}
		return &view{Operation: "PutItem", TableName: deref(in.TableName), Item: renderMap(in.Item)}, nil

	case "create":
		in, err := request.ConditionalPut(r.Table, r.Item, hashKey)
		if err != nil {
			return nil, err
		}
		return &view{
			Operation:           "PutItem",
			TableName:           deref(in.TableName),
			Item:                renderMap(in.Item),
			ConditionExpression: deref(in.ConditionExpression),
			Names:               in.ExpressionAttributeNames,
			Values:              renderMap(in.ExpressionAttributeValues),
		}, nil

	case "query":
		in, err := request.Query(r.Table, request.QueryParams{
			Index:      r.Index,
			Conditions: r.Conditions,
			Filters:    r.Filters,
			Projection: r.Projection,
			Limit:      r.Limit,
		}, opts...)
		if err != nil {
			return nil, err
		}
		return &view{
			Operation:              "Query",
			TableName:              deref(in.TableName),
			IndexName:              deref(in.IndexName),
			KeyConditionExpression: deref(in.KeyConditionExpression),
			FilterExpression:       deref(in.FilterExpression),
			ProjectionExpression:   deref(in.ProjectionExpression),
			Names:                  in.ExpressionAttributeNames,
			Values:                 renderMap(in.ExpressionAttributeValues),
			Limit:                  in.Limit,
			ConsistentRead:         in.ConsistentRead,
		}, nil

	case "scan":
		in, err := request.Scan(r.Table, request.ScanParams{
			Index:      r.Index,
			Filters:    r.Filters,
			Projection: r.Projection,
			Limit:      r.Limit,
		}, opts...)
		if err != nil {
			return nil, err
		}
		return &view{
			Operation:            "Scan",
			TableName:            deref(in.TableName),
			IndexName:            deref(in.IndexName),
			FilterExpression:     deref(in.FilterExpression),
			ProjectionExpression: deref(in.ProjectionExpression),
			Names:                in.ExpressionAttributeNames,
			Values:               renderMap(in.ExpressionAttributeValues),
			Limit:                in.Limit,
			Select:               string(in.Select),
		}, nil
	}
	return nil, fmt.Errorf("operação desconhecida: %s", op)
}

func encodeKey(r dyndb.Request) (request.Key, error) {
	src := r.Key
	if src.Len() == 0 {
		src = r.Item
	}
	return expression.EncodeMap(src)
}
