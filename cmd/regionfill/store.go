package main

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	awss3 "github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"github.com/hupe1980/regionfill"
	"github.com/hupe1980/regionfill/blobstore"
	minioblob "github.com/hupe1980/regionfill/blobstore/minio"
	s3blob "github.com/hupe1980/regionfill/blobstore/s3"
	"github.com/hupe1980/regionfill/internal/fs"
)

// openStore builds the archive store selected by a. Cloud credentials come
// from the environment.
func openStore(ctx context.Context, a regionfill.ArchiveConfig) (blobstore.Store, error) {
	switch a.Backend {
	case "", regionfill.BackendLocal:
		return blobstore.NewLocalStore(a.Dir, fs.Default), nil

	case regionfill.BackendS3:
		var optFns []func(*awsconfig.LoadOptions) error
		if a.Region != "" {
			optFns = append(optFns, awsconfig.WithRegion(a.Region))
		}
		awsCfg, err := awsconfig.LoadDefaultConfig(ctx, optFns...)
		if err != nil {
			return nil, fmt.Errorf("load aws config: %w", err)
		}
		client := awss3.NewFromConfig(awsCfg, func(o *awss3.Options) {
			if a.Endpoint != "" {
				o.BaseEndpoint = aws.String(a.Endpoint)
				o.UsePathStyle = true
			}
		})
		return s3blob.NewStore(client, a.Bucket, a.Prefix), nil

	case regionfill.BackendMinIO:
		client, err := minio.New(a.Endpoint, &minio.Options{
			Creds:  credentials.NewEnvMinio(),
			Secure: a.Secure,
			Region: a.Region,
		})
		if err != nil {
			return nil, fmt.Errorf("minio client: %w", err)
		}
		return minioblob.NewStore(client, a.Bucket, a.Prefix), nil

	default:
		return nil, fmt.Errorf("unknown archive backend %q", a.Backend)
	}
}
